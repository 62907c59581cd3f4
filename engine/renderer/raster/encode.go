package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

type Format uint8

const (
	FormatPNG Format = iota
	FormatWebP
)

func (f Format) String() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

// ParseFormat accepts "png" or "webp", case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png", "":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return FormatPNG, fmt.Errorf("unsupported preview format '%s'", name)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}

// WriteFile encodes img to path, picking the format from the file extension.
func WriteFile(path string, img image.Image) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
