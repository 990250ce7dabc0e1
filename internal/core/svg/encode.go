// Package svg encodes an assembled frame as a self-contained SVG document.
package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/geom"
)

const ContentType = "image/svg+xml"

const keyframes = `@keyframes twinkle { 0%, 100% { opacity: 0.3; } 50% { opacity: 1; } }
@keyframes flicker { 0%, 90%, 100% { opacity: 1; } 95% { opacity: 0.7; } }
@keyframes lampPulse { 0%, 100% { opacity: 0.15; } 50% { opacity: 0.25; } }
.star { animation: twinkle 3s infinite; }
.window { animation: flicker 6s infinite alternate; }
.lamp-glow { animation: lampPulse 4s infinite; }`

// Encode renders doc. It never fails for a well-formed document.
func Encode(doc *frame.Document) string {
	var b strings.Builder
	_ = Write(&b, doc)
	return b.String()
}

// Write streams doc to w.
func Write(w io.Writer, doc *frame.Document) error {
	e := &encoder{}
	e.document(doc)
	_, err := w.Write(e.buf.Bytes())
	return err
}

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) write(parts ...string) {
	for _, p := range parts {
		e.buf.WriteString(p)
	}
}

func (e *encoder) document(doc *frame.Document) {
	w, h := num(doc.Width), num(doc.Height)
	e.write(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `, w, " ", h, `" width="`, w, `" height="`, h, `">`, "\n")
	e.write("<title>", escape(doc.Title), "</title>\n")

	e.write("<defs>\n")
	if doc.Sky.ID != "" {
		e.write(`<linearGradient id="`, escape(doc.Sky.ID), `" x1="0%" y1="0%" x2="0%" y2="100%">`)
		e.write(`<stop offset="0%" stop-color="`, escape(doc.Sky.From), `"/>`)
		e.write(`<stop offset="100%" stop-color="`, escape(doc.Sky.To), `"/>`)
		e.write("</linearGradient>\n")
	}
	if doc.Animate {
		e.write("<style>\n", keyframes, "\n</style>\n")
	}
	e.write("</defs>\n")

	if doc.Sky.ID != "" {
		e.write(`<rect width="`, w, `" height="`, h, `" fill="url(#`, escape(doc.Sky.ID), `)"/>`, "\n")
	}

	e.geometry(doc.Backdrop)
	e.shape(doc.Scene)

	e.write(`<g style="font-family: `, escape(doc.FontFamily), `; font-weight: bold;">`, "\n")
	e.geometry(doc.Overlay)
	e.write("</g>\n</svg>\n")
}

func (e *encoder) geometry(g geom.Geometry) {
	for _, s := range g {
		e.shape(s)
	}
}

func (e *encoder) shape(s geom.Shape) {
	switch v := s.(type) {
	case geom.Polygon:
		pts := make([]string, len(v.Points))
		for i, p := range v.Points {
			pts[i] = num(p.X) + "," + num(p.Y)
		}
		e.write(`<polygon points="`, strings.Join(pts, " "), `"`)
		e.style(v.Style)
		e.write("/>\n")
	case geom.Ellipse:
		e.write(`<ellipse cx="`, num(v.Center.X), `" cy="`, num(v.Center.Y), `" rx="`, num(v.RX), `" ry="`, num(v.RY), `"`)
		e.style(v.Style)
		e.write("/>\n")
	case geom.Rect:
		e.write(`<rect x="`, num(v.Min.X), `" y="`, num(v.Min.Y), `" width="`, num(v.Width), `" height="`, num(v.Height), `"`)
		e.style(v.Style)
		e.write("/>\n")
	case geom.Text:
		e.text(v)
	case geom.Group:
		e.write("<g")
		if v.Offset != (geom.Point{}) {
			e.write(` transform="translate(`, num(v.Offset.X), ", ", num(v.Offset.Y), `)"`)
		}
		if v.Class != "" {
			e.write(` class="`, escape(v.Class), `"`)
		}
		e.write(">\n")
		e.geometry(v.Shapes)
		e.write("</g>\n")
	}
}

func (e *encoder) text(t geom.Text) {
	e.write(`<text x="`, num(t.At.X), `" y="`, num(t.At.Y), `"`)
	if t.Anchor != "" {
		e.write(` text-anchor="`, escape(t.Anchor), `"`)
	}
	if t.Size > 0 {
		e.write(` font-size="`, num(t.Size), `"`)
	}
	e.style(t.Style)
	if t.Stroke != "" {
		e.write(` paint-order="stroke"`)
	}
	e.write(">", escape(t.Content))
	for _, sp := range t.Spans {
		if sp.Fill != "" {
			e.write(`<tspan fill="`, escape(sp.Fill), `">`, escape(sp.Content), "</tspan>")
		} else {
			e.write("<tspan>", escape(sp.Content), "</tspan>")
		}
	}
	e.write("</text>\n")
}

func (e *encoder) style(s geom.Style) {
	fill := s.Fill
	if fill == "" {
		fill = geom.None
	}
	e.write(` fill="`, escape(fill), `"`)
	if s.Stroke != "" && s.StrokeWidth > 0 {
		e.write(` stroke="`, escape(s.Stroke), `" stroke-width="`, num(s.StrokeWidth), `"`)
	}
	if s.Opacity > 0 && s.Opacity < 1 {
		e.write(` opacity="`, num(s.Opacity), `"`)
	}
	if s.Class != "" {
		e.write(` class="`, escape(s.Class), `"`)
	}
	if s.CSS != "" {
		e.write(` style="`, escape(s.CSS), `"`)
	}
}

// num prints at most two decimals and never "-0".
func num(f float64) string {
	r := math.Round(f*100) / 100
	if r == 0 {
		r = 0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
