package fits

import (
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// Reader implements the viewer's renderer contract on top of fitsio.
type Reader struct{}

// Render opens path and returns its Document.
func (Reader) Render(path string) (*Document, error) {
	return Open(path)
}

// Open parses the FITS file at path. Every failure is returned as a
// *ParseError; the underlying file is always closed before returning.
func Open(path string) (doc *Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: is a directory", ErrNotFITS)}
	}

	// fitsio panics on some truncated inputs
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			if rerr, ok := r.(error); ok {
				err = &ParseError{Path: path, Err: fmt.Errorf("%w: %w", ErrNotFITS, rerr)}
				return
			}
			err = &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrNotFITS, r)}
		}
	}()

	ff, err := fitsio.Open(f)
	if err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %w", ErrNotFITS, err)}
	}
	defer ff.Close()

	hdus := ff.HDUs()
	if len(hdus) == 0 {
		return nil, &ParseError{Path: path, Err: ErrNotFITS}
	}

	primary := hdus[0]
	img, err := readPrimaryImage(primary)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return &Document{
		Path:    path,
		Size:    info.Size(),
		Summary: summarize(path, info.Size(), hdus),
		Cards:   headerCards(primary.Header()),
		Image:   img,
	}, nil
}

// imageShape validates the axes of an image HDU and returns its 2D size.
// Extra axes are accepted only when they are degenerate (length 1).
func imageShape(axes []int) (width, height int, err error) {
	switch {
	case len(axes) == 0:
		return 0, 0, ErrNoImage
	case len(axes) == 1:
		return 0, 0, fmt.Errorf("%w: 1-dimensional data", ErrUnsupported)
	}
	for i, n := range axes[2:] {
		if n != 1 {
			return 0, 0, fmt.Errorf("%w: NAXIS%d = %d", ErrUnsupported, i+3, n)
		}
	}
	width, height = axes[0], axes[1]
	if width <= 0 || height <= 0 {
		return 0, 0, ErrNoImage
	}
	return width, height, nil
}

func readPrimaryImage(hdu fitsio.HDU) (*Image, error) {
	imgHDU, ok := hdu.(fitsio.Image)
	if !ok {
		return nil, ErrNoImage
	}
	hdr := hdu.Header()
	width, height, err := imageShape(hdr.Axes())
	if err != nil {
		return nil, err
	}

	n := width * height
	out := NewImage(width, height)
	out.Bitpix = hdr.Bitpix()

	switch hdr.Bitpix() {
	case 8:
		raw := make([]byte, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out.Pix[i] = float64(v)
		}
	case 16:
		raw := make([]int16, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out.Pix[i] = float64(v)
		}
	case 32:
		raw := make([]int32, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out.Pix[i] = float64(v)
		}
	case 64:
		raw := make([]int64, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out.Pix[i] = float64(v)
		}
	case -32:
		raw := make([]float32, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out.Pix[i] = float64(v)
		}
	case -64:
		raw := make([]float64, n)
		if err := imgHDU.Read(&raw); err != nil {
			return nil, err
		}
		copy(out.Pix, raw)
	default:
		return nil, fmt.Errorf("%w: BITPIX = %d", ErrUnsupported, hdr.Bitpix())
	}

	applyScale(out.Pix, cardFloat(hdr, "BZERO", 0), cardFloat(hdr, "BSCALE", 1))
	return out, nil
}

// applyScale converts stored values to physical values:
// physical = bzero + bscale * stored.
func applyScale(pix []float64, bzero, bscale float64) {
	if bzero == 0 && bscale == 1 {
		return
	}
	for i, v := range pix {
		pix[i] = bzero + bscale*v
	}
}

func cardFloat(hdr *fitsio.Header, name string, def float64) float64 {
	card := hdr.Get(name)
	if card == nil {
		return def
	}
	switch v := card.Value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	}
	return def
}

func cardString(hdr *fitsio.Header, name string) string {
	card := hdr.Get(name)
	if card == nil {
		return ""
	}
	if s, ok := card.Value.(string); ok {
		return s
	}
	return fmt.Sprint(card.Value)
}

func headerCards(hdr *fitsio.Header) []Card {
	keys := hdr.Keys()
	cards := make([]Card, 0, len(keys))
	for _, key := range keys {
		card := hdr.Get(key)
		if card == nil {
			continue
		}
		cards = append(cards, Card{
			Keyword: key,
			Value:   formatValue(card.Value),
			Comment: card.Comment,
		})
	}
	return cards
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "T"
		}
		return "F"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
