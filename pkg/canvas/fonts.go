// fonts.go - Font loading with custom TTF support and embedded fallback.
// Uses golang.org/x/image/font for OpenType rendering. Falls back to the
// embedded Go Regular font when no custom font is given or loading fails.
package canvas

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontManager creates font faces at arbitrary sizes from a single parsed font.
// Text layers sample continuous sizes, so faces are cached per rounded size.
type FontManager struct {
	parsed *opentype.Font
	dpi    float64
	faces  map[int]font.Face
}

// NewFontManager parses the font at customPath, or the embedded Go font when
// customPath is empty or unreadable.
func NewFontManager(customPath string) (*FontManager, error) {
	var fontData []byte
	var err error

	if customPath != "" {
		fontData, err = os.ReadFile(customPath)
		if err != nil {
			fmt.Printf("Warning: could not load custom font '%s', using default\n", customPath)
			fontData = nil
		}
	}
	if fontData == nil {
		fontData = goregular.TTF
	}

	parsed, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &FontManager{
		parsed: parsed,
		dpi:    72,
		faces:  make(map[int]font.Face),
	}, nil
}

// Face returns a font face at the given pixel size.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	key := int(size)
	if key < 4 {
		key = 4
	}
	if f, ok := fm.faces[key]; ok {
		return f, nil
	}

	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    float64(key),
		DPI:     fm.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	fm.faces[key] = face
	return face, nil
}
