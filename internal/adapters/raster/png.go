// Package raster draws an assembled city frame into a PNG with gogpu/gg.
package raster

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/geom"
	"github.com/mna11/ReadMe3D/internal/core/voxel"
)

const ContentType = "image/png"

var named = map[string]string{
	"white": "#ffffff",
	"black": "#000000",
}

type Encoder struct {
	// Scale multiplies the canvas size, 1 keeps the document size.
	Scale float64
	font  *voxel.Font
}

func NewEncoder(scale float64) *Encoder {
	if scale <= 0 {
		scale = 1
	}
	return &Encoder{Scale: scale, font: voxel.Default()}
}

// Encode writes doc as PNG. Text is drawn with the bitmap font because the
// raster has no font files to load.
func (e *Encoder) Encode(w io.Writer, doc *frame.Document) error {
	width := int(math.Ceil(doc.Width * e.Scale))
	height := int(math.Ceil(doc.Height * e.Scale))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid canvas %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(doc.Sky.To))
	dc.Scale(e.Scale, e.Scale)

	if doc.Sky.ID != "" {
		dc.SetFillBrush(gg.NewLinearGradientBrush(0, 0, 0, doc.Height).
			AddColorStop(0, gg.Hex(doc.Sky.From)).
			AddColorStop(1, gg.Hex(doc.Sky.To)))
		dc.DrawRectangle(0, 0, doc.Width, doc.Height)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("raster: sky: %w", err)
		}
	}

	for _, layer := range []geom.Geometry{doc.Backdrop, {doc.Scene}, doc.Overlay} {
		if err := e.geometry(dc, layer); err != nil {
			return err
		}
	}

	return dc.EncodePNG(w)
}

// Bytes is Encode into memory.
func (e *Encoder) Bytes(doc *frame.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Encoder) geometry(dc *gg.Context, g geom.Geometry) error {
	for _, s := range g {
		if err := e.shape(dc, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) shape(dc *gg.Context, s geom.Shape) error {
	switch v := s.(type) {
	case geom.Polygon:
		if len(v.Points) < 2 {
			return nil
		}
		dc.MoveTo(v.Points[0].X, v.Points[0].Y)
		for _, p := range v.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
		return paint(dc, v.Style)
	case geom.Ellipse:
		dc.DrawEllipse(v.Center.X, v.Center.Y, v.RX, v.RY)
		return paint(dc, v.Style)
	case geom.Rect:
		dc.DrawRectangle(v.Min.X, v.Min.Y, v.Width, v.Height)
		return paint(dc, v.Style)
	case geom.Text:
		return e.text(dc, v)
	case geom.Group:
		dc.Push()
		defer dc.Pop()
		dc.Translate(v.Offset.X, v.Offset.Y)
		return e.geometry(dc, v.Shapes)
	}
	return nil
}

// paint fills and strokes the current path.
func paint(dc *gg.Context, st geom.Style) error {
	stroke := st.Stroke != "" && st.Stroke != geom.None && st.StrokeWidth > 0
	if !st.Visible() && !stroke {
		dc.ClearPath()
		return nil
	}

	if st.Visible() {
		setColor(dc, st.Fill, st.Opacity)
		var err error
		if stroke {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return fmt.Errorf("raster: fill: %w", err)
		}
	}
	if stroke {
		setColor(dc, st.Stroke, st.Opacity)
		dc.SetLineWidth(st.StrokeWidth)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("raster: stroke: %w", err)
		}
	}
	return nil
}

func setColor(dc *gg.Context, fill string, opacity float64) {
	if hex, ok := named[strings.ToLower(fill)]; ok {
		fill = hex
	}
	c := gg.Hex(fill)
	if opacity > 0 && opacity < 1 {
		c.A *= opacity
	}
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

type run struct {
	text  string
	color string
}

// text draws each lit glyph cell as a square. y is the baseline, as in SVG.
func (e *Encoder) text(dc *gg.Context, t geom.Text) error {
	runs := []run{{text: t.Content, color: t.Fill}}
	full := t.Content
	for _, sp := range t.Spans {
		color := sp.Fill
		if color == "" {
			color = t.Fill
		}
		runs = append(runs, run{text: sp.Content, color: color})
		full += sp.Content
	}

	size := t.Size
	if size <= 0 {
		size = 16
	}
	px := size / float64(e.font.GlyphHeight())
	width := float64(e.font.Columns(full)) * px

	x := t.At.X
	switch t.Anchor {
	case "middle":
		x -= width / 2
	case "end":
		x -= width
	}
	top := t.At.Y - size

	if t.Stroke != "" && t.StrokeWidth > 0 {
		if err := e.glyphs(dc, runs, x+t.StrokeWidth, top+t.StrokeWidth, px, t.Stroke); err != nil {
			return err
		}
	}
	return e.glyphs(dc, runs, x, top, px, "")
}

func (e *Encoder) glyphs(dc *gg.Context, runs []run, x, top, px float64, override string) error {
	advance := float64(e.font.GlyphWidth()+1) * px
	for _, r := range runs {
		color := r.color
		if override != "" {
			color = override
		}
		if color == "" || color == geom.None {
			x += advance * float64(len([]rune(r.text)))
			continue
		}
		setColor(dc, color, 1)
		for _, ch := range r.text {
			g := e.font.Glyph(ch)
			for row, cells := range g.Rows {
				for col, lit := range cells {
					if lit {
						dc.DrawRectangle(x+float64(col)*px, top+float64(row)*px, px, px)
					}
				}
			}
			x += advance
		}
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("raster: text: %w", err)
		}
	}
	return nil
}
