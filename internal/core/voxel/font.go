// Package voxel renders text as tiny isometric blocks, one per lit pixel of
// a bitmap glyph.
package voxel

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mna11/ReadMe3D/internal/core/geom"
	"github.com/mna11/ReadMe3D/internal/core/iso"
)

// SideShade colours the right face of every text block so glyphs stay
// legible against buildings.
const SideShade = "#1b1f2a"

// Glyph is a rectangular on/off matrix, rows top to bottom.
type Glyph struct {
	Rows [][]bool
}

func (g Glyph) Width() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return len(g.Rows[0])
}

func (g Glyph) Height() int {
	return len(g.Rows)
}

func (g Glyph) Lit() int {
	n := 0
	for _, row := range g.Rows {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// ParseGlyph reads '#' as lit and anything else as dark. All rows must share a width.
func ParseGlyph(rows []string) (Glyph, error) {
	g := Glyph{Rows: make([][]bool, len(rows))}
	for i, r := range rows {
		cells := []rune(r)
		if i > 0 && len(cells) != len(g.Rows[0]) {
			return Glyph{}, fmt.Errorf("glyph row %d has width %d, want %d", i, len(cells), len(g.Rows[0]))
		}
		g.Rows[i] = make([]bool, len(cells))
		for j, c := range cells {
			g.Rows[i][j] = c == '#'
		}
	}
	return g, nil
}

// Font maps runes to glyphs of one fixed size.
type Font struct {
	width, height int
	glyphs        map[rune]Glyph
	blank         Glyph
}

// NewFont builds a font from string-row glyphs. Every glyph must be width x height.
func NewFont(width, height int, table map[rune][]string) (*Font, error) {
	f := &Font{
		width:  width,
		height: height,
		glyphs: make(map[rune]Glyph, len(table)),
		blank:  blankGlyph(width, height),
	}
	for r, rows := range table {
		g, err := ParseGlyph(rows)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", r, err)
		}
		if g.Width() != width || g.Height() != height {
			return nil, fmt.Errorf("glyph %q is %dx%d, want %dx%d", r, g.Width(), g.Height(), width, height)
		}
		f.glyphs[r] = g
	}
	return f, nil
}

var defaultFont = mustFont(NewFont(5, 7, glyphs5x7))

// Default returns the built-in 5x7 font.
func Default() *Font {
	return defaultFont
}

func mustFont(f *Font, err error) *Font {
	if err != nil {
		panic(err)
	}
	return f
}

func blankGlyph(width, height int) Glyph {
	g := Glyph{Rows: make([][]bool, height)}
	for i := range g.Rows {
		g.Rows[i] = make([]bool, width)
	}
	return g
}

func (f *Font) GlyphWidth() int  { return f.width }
func (f *Font) GlyphHeight() int { return f.height }

// Glyph looks r up case-insensitively; unknown runes get the blank glyph.
func (f *Font) Glyph(r rune) Glyph {
	if g, ok := f.glyphs[unicode.ToUpper(r)]; ok {
		return g
	}
	return f.blank
}

// Supports reports whether r has a dedicated glyph.
func (f *Font) Supports(r rune) bool {
	_, ok := f.glyphs[unicode.ToUpper(r)]
	return ok
}

// Alphabet lists the supported runes in a stable order.
func (f *Font) Alphabet() string {
	var b strings.Builder
	for _, r := range "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789:-.!+/#" {
		if f.Supports(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Columns is the number of grid columns text occupies, gaps included.
func (f *Font) Columns(text string) int {
	cols := 0
	for _, r := range text {
		cols += f.Glyph(r).Width() + 1
	}
	if cols > 0 {
		cols--
	}
	return cols
}

// Width is the extent of text along the flow axis at the given scale.
func (f *Font) Width(text string, scale float64) float64 {
	return float64(f.Columns(text)) * scale
}

// Height is the extent of one line at the given scale.
func (f *Font) Height(scale float64) float64 {
	return float64(f.height) * scale
}

// Palette is the face colouring used by text blocks.
func Palette(color string) iso.Palette {
	return iso.Palette{Top: color, Right: SideShade, Left: color}
}

// Blocks lays text out along +X starting at origin; origin.Z is the baseline
// of the bottom glyph row. Blocks come back to front: columns left to right,
// each column from the bottom row up.
func (f *Font) Blocks(text string, origin iso.GridPoint, color string, scale float64) []iso.Block {
	palette := Palette(color)
	var out []iso.Block

	flow := 0
	for _, r := range text {
		g := f.Glyph(r)
		for col := 0; col < g.Width(); col++ {
			for row := g.Height() - 1; row >= 0; row-- {
				if !g.Rows[row][col] {
					continue
				}
				out = append(out, iso.Block{
					Origin: iso.GridPoint{
						X: origin.X + float64(flow+col)*scale,
						Y: origin.Y,
						Z: origin.Z + float64(g.Height()-1-row)*scale,
					},
					W:       scale,
					D:       scale,
					H:       scale,
					Palette: palette,
				})
			}
		}
		flow += g.Width() + 1
	}
	return out
}

// Text renders text as voxel blocks projected by p.
func (f *Font) Text(p iso.Projection, text string, origin iso.GridPoint, color string, scale float64) geom.Geometry {
	return p.Blocks(f.Blocks(text, origin, color, scale)...)
}

// Centered renders text so its flow extent is centred on center.X.
func (f *Font) Centered(p iso.Projection, text string, center iso.GridPoint, color string, scale float64) geom.Geometry {
	origin := center
	origin.X -= f.Width(text, scale) / 2
	return f.Text(p, text, origin, color, scale)
}
