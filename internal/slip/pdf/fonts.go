package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	// RegularFile and BoldFile are the font file names looked up in a font FS.
	RegularFile = "DejaVuSans.ttf"
	BoldFile    = "DejaVuSans-Bold.ttf"

	bundledFamily = "Go"
	dirFamily     = "DejaVuSans"
)

// ErrFontMissing is returned when a font file is absent or not a TrueType font.
var ErrFontMissing = errors.New("pdf: font missing")

// Fonts is a regular and bold face of one family.
type Fonts struct {
	Family  string
	Regular []byte
	Bold    []byte
}

// BundledFonts returns the Go font family compiled into the binary. It covers
// Serbian Latin and Cyrillic.
func BundledFonts() Fonts {
	return Fonts{Family: bundledFamily, Regular: goregular.TTF, Bold: gobold.TTF}
}

// ResolveFonts loads RegularFile and BoldFile from dir when set and falls
// back to the bundled fonts otherwise.
func ResolveFonts(dir string) (Fonts, error) {
	if dir == "" {
		return BundledFonts(), nil
	}
	return LoadFonts(os.DirFS(dir))
}

// LoadFonts reads RegularFile and BoldFile from fsys.
func LoadFonts(fsys fs.FS) (Fonts, error) {
	regular, err := readFont(fsys, RegularFile)
	if err != nil {
		return Fonts{}, err
	}
	bold, err := readFont(fsys, BoldFile)
	if err != nil {
		return Fonts{}, err
	}
	return Fonts{Family: dirFamily, Regular: regular, Bold: bold}, nil
}

var (
	ttfMagic  = []byte{0x00, 0x01, 0x00, 0x00}
	trueMagic = []byte("true")
)

func readFont(fsys fs.FS, name string) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFontMissing, name, err)
	}
	if !isTrueType(data) {
		return nil, fmt.Errorf("%w: %s is not a TrueType font", ErrFontMissing, name)
	}
	return data, nil
}

func isTrueType(data []byte) bool {
	return bytes.HasPrefix(data, ttfMagic) || bytes.HasPrefix(data, trueMagic)
}
