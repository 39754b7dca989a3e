package fits

import (
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/dustin/go-humanize"
)

// summarize lists the data units of a file, one row per HDU.
func summarize(path string, size int64, hdus []fitsio.HDU) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\n", path)
	fmt.Fprintf(&b, "%-4s %-10s %4s %-12s %6s  %-14s %s\n", "No.", "Name", "Ver", "Type", "Cards", "Dimensions", "Format")
	for i, hdu := range hdus {
		hdr := hdu.Header()
		fmt.Fprintf(&b, "%3d  %-10s %4d %-12s %6d  %-14s %s\n",
			i,
			hduName(i, hdr),
			hduVersion(hdr),
			hduTypeName(i, hdu),
			len(hdr.Keys()),
			hduDimensions(hdu),
			hduFormat(hdu),
		)
	}
	fmt.Fprintf(&b, "Size: %s (%d bytes)\n", humanize.Bytes(uint64(size)), size)
	return b.String()
}

func hduName(index int, hdr *fitsio.Header) string {
	if name := strings.TrimSpace(cardString(hdr, "EXTNAME")); name != "" {
		return name
	}
	if index == 0 {
		return "PRIMARY"
	}
	return ""
}

func hduVersion(hdr *fitsio.Header) int {
	if v := int(cardFloat(hdr, "EXTVER", 1)); v > 0 {
		return v
	}
	return 1
}

func hduTypeName(index int, hdu fitsio.HDU) string {
	switch hdu.Type() {
	case fitsio.IMAGE_HDU:
		if index == 0 {
			return "PrimaryHDU"
		}
		return "ImageHDU"
	case fitsio.BINARY_TBL:
		return "BinTableHDU"
	case fitsio.ASCII_TBL:
		return "TableHDU"
	}
	return "UnknownHDU"
}

// hduDimensions renders image axes as (NAXIS1, NAXIS2, ...) and tables as
// rows x columns.
func hduDimensions(hdu fitsio.HDU) string {
	if tbl, ok := hdu.(*fitsio.Table); ok {
		return fmt.Sprintf("%dR x %dC", tbl.NumRows(), tbl.NumCols())
	}
	axes := hdu.Header().Axes()
	parts := make([]string, len(axes))
	for i, n := range axes {
		parts[i] = fmt.Sprint(n)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func hduFormat(hdu fitsio.HDU) string {
	if hdu.Type() != fitsio.IMAGE_HDU || len(hdu.Header().Axes()) == 0 {
		return ""
	}
	hdr := hdu.Header()
	return formatName(hdr.Bitpix(), cardFloat(hdr, "BZERO", 0), cardFloat(hdr, "BSCALE", 1))
}

// formatName names the physical pixel type, taking the conventional
// unsigned-integer BZERO offsets into account.
func formatName(bitpix int, bzero, bscale float64) string {
	if bscale == 1 {
		switch {
		case bitpix == 8 && bzero == -128:
			return "int8"
		case bitpix == 16 && bzero == 1<<15:
			return "uint16"
		case bitpix == 32 && bzero == 1<<31:
			return "uint32"
		case bitpix == 64 && bzero == 1<<63:
			return "uint64"
		}
	}
	if bzero != 0 || bscale != 1 {
		if bitpix > 0 && bitpix <= 16 {
			return "float32"
		}
		if bitpix > 0 {
			return "float64"
		}
	}
	switch bitpix {
	case 8:
		return "uint8"
	case 16:
		return "int16"
	case 32:
		return "int32"
	case 64:
		return "int64"
	case -32:
		return "float32"
	case -64:
		return "float64"
	}
	return fmt.Sprintf("bitpix=%d", bitpix)
}
