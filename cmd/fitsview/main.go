// FITS File Viewer: opens FITS images in cascaded viewer windows
//
// The main window offers four controls: open files, clear windows, and two
// placeholders for calibration and BHTOM upload. Every opened file gets its
// own window showing the HDU summary above a grayscale rendering; all of them
// hide and reappear with the main window.
//
// Build:
//   go build -o fitsview ./cmd/fitsview
//
// Run:
//   fitsview [-v] [--config path] [file.fits ...]

package main

func main() {
	Execute()
}
