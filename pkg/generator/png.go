// png.go - PNG still-image writer.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// EncodePNG encodes img as PNG to w.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}
	return nil
}

// WritePNG encodes img to a PNG file at the given path.
func WritePNG(output string, img image.Image) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	return EncodePNG(f, img)
}
