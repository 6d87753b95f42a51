package imaging

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors used to annotate a graded sheet.
type Palette struct {
	// Correct outlines alternatives that match the answer key.
	Correct color.Color

	// Incorrect outlines alternatives that do not match the answer key.
	Incorrect color.Color

	// ScoreFill is the inner color of the score banner text.
	ScoreFill color.Color

	// ScoreStroke is the outline drawn behind the score banner text so it
	// stays legible on dark and light backgrounds alike.
	ScoreStroke color.Color
}

// PaletteHex is the configuration form of a Palette, one hex string per role.
type PaletteHex struct {
	Correct     string `json:"correct_color" yaml:"correct_color" mapstructure:"correct_color"`
	Incorrect   string `json:"incorrect_color" yaml:"incorrect_color" mapstructure:"incorrect_color"`
	ScoreFill   string `json:"score_fill_color" yaml:"score_fill_color" mapstructure:"score_fill_color"`
	ScoreStroke string `json:"score_stroke_color" yaml:"score_stroke_color" mapstructure:"score_stroke_color"`
}

// DefaultPaletteHex returns green/red marks with a black-on-white banner.
func DefaultPaletteHex() PaletteHex {
	return PaletteHex{
		Correct:     "#00FF00",
		Incorrect:   "#FF0000",
		ScoreFill:   "#000000",
		ScoreStroke: "#FFFFFF",
	}
}

// DefaultPalette returns the parsed form of DefaultPaletteHex.
func DefaultPalette() Palette {
	p, _ := DefaultPaletteHex().Parse()
	return p
}

// Parse converts every hex string into a color. Empty entries fall back to
// the default for that role.
func (h PaletteHex) Parse() (Palette, error) {
	def := DefaultPaletteHex()

	var (
		p   Palette
		err error
	)
	if p.Correct, err = parseRole("correct_color", h.Correct, def.Correct); err != nil {
		return Palette{}, err
	}
	if p.Incorrect, err = parseRole("incorrect_color", h.Incorrect, def.Incorrect); err != nil {
		return Palette{}, err
	}
	if p.ScoreFill, err = parseRole("score_fill_color", h.ScoreFill, def.ScoreFill); err != nil {
		return Palette{}, err
	}
	if p.ScoreStroke, err = parseRole("score_stroke_color", h.ScoreStroke, def.ScoreStroke); err != nil {
		return Palette{}, err
	}
	return p, nil
}

func parseRole(name, hex, fallback string) (color.Color, error) {
	if hex == "" {
		hex = fallback
	}
	c, err := ParseHexColor(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return c, nil
}

// ParseHexColor parses "#RRGGBB" or "#RGB"; the leading '#' is optional.
func ParseHexColor(hex string) (color.Color, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return nil, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
