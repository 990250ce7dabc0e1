// Package frame wraps a composited scene with the fixed chrome of the city
// image: sky, stars, moon, title and summary labels.
package frame

import (
	"math/rand/v2"
	"strconv"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/geom"
)

const (
	DefaultTitle      = "Contribution City"
	DefaultFontFamily = "'Courier New', monospace"
	highlight         = "#ffdd66"
)

type Gradient struct {
	ID       string
	From, To string
}

type Config struct {
	Width, Height float64
	SceneOffset   geom.Point
	Sky           Gradient

	StarCount  int
	MoonCenter geom.Point
	MoonRadius float64

	Title      string
	FontFamily string

	// Animate enables the inline keyframes of the SVG encoder.
	Animate bool

	// Rand drives the star field; nil means an unseeded generator.
	Rand *rand.Rand
}

func DefaultConfig() Config {
	return Config{
		Width:       900,
		Height:      500,
		SceneOffset: geom.Point{X: 250, Y: 290},
		Sky:         Gradient{ID: "skyGradient", From: "#0a0a15", To: "#1a1a2a"},
		StarCount:   50,
		MoonCenter:  geom.Point{X: 750, Y: 80},
		MoonRadius:  40,
		Title:       DefaultTitle,
		FontFamily:  DefaultFontFamily,
		Animate:     true,
	}
}

// Document is the assembled image, ready for an encoder. Layers paint in
// field order: Sky, Backdrop, Scene, Overlay.
type Document struct {
	Width, Height float64
	Title         string
	FontFamily    string
	Animate       bool

	Sky      Gradient
	Backdrop geom.Geometry
	Scene    geom.Group
	Overlay  geom.Geometry
}

// Assemble lays the scene over the sky and adds the labels. An empty title
// falls back to the configured one.
func Assemble(cfg Config, scene geom.Geometry, totals domain.Totals, title string) *Document {
	if title == "" {
		title = cfg.Title
	}
	if title == "" {
		title = DefaultTitle
	}
	font := cfg.FontFamily
	if font == "" {
		font = DefaultFontFamily
	}

	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	backdrop := stars(cfg, rnd)
	backdrop = append(backdrop, moon(cfg))

	return &Document{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Title:      title,
		FontFamily: font,
		Animate:    cfg.Animate,
		Sky:        cfg.Sky,
		Backdrop:   backdrop,
		Scene:      geom.Group{Offset: cfg.SceneOffset, Shapes: scene},
		Overlay:    labels(cfg, title, totals),
	}
}

func stars(cfg Config, rnd *rand.Rand) geom.Geometry {
	out := make(geom.Geometry, 0, cfg.StarCount)
	for range cfg.StarCount {
		x := rnd.Float64() * cfg.Width
		y := rnd.Float64() * cfg.Height / 2
		size := rnd.Float64()*1.5 + 0.5
		delay := strconv.FormatFloat(rnd.Float64()*3, 'f', 1, 64)
		out = append(out, geom.Rect{
			Min:    geom.Point{X: x, Y: y},
			Width:  size,
			Height: size,
			Style: geom.Style{
				Fill:  "white",
				Class: "star",
				CSS:   "animation-delay: " + delay + "s",
			},
		})
	}
	return out
}

func moon(cfg Config) geom.Group {
	r := cfg.MoonRadius
	crater := func(x, y, radius float64) geom.Ellipse {
		return geom.Ellipse{
			Center: geom.Point{X: x * r / 40, Y: y * r / 40},
			RX:     radius * r / 40,
			RY:     radius * r / 40,
			Style:  geom.Style{Fill: "#ddddcc", Opacity: 0.5},
		}
	}
	return geom.Group{
		Offset: cfg.MoonCenter,
		Class:  "moon",
		Shapes: geom.Geometry{
			geom.Ellipse{RX: r, RY: r, Style: geom.Style{Fill: "#ffffee", Stroke: "#ddddcc", StrokeWidth: 3}},
			crater(-15, -10, 8),
			crater(10, 5, 12),
			crater(20, -15, 5),
		},
	}
}

func labels(cfg Config, title string, totals domain.Totals) geom.Geometry {
	outline := func(width float64) geom.Style {
		return geom.Style{Fill: "#ffffff", Stroke: "#000000", StrokeWidth: width}
	}
	summary := func(label string, n int, y float64) geom.Text {
		return geom.Text{
			At:      geom.Point{X: 30, Y: y},
			Content: label + ": ",
			Spans:   []geom.Span{{Content: strconv.Itoa(n), Fill: highlight}},
			Size:    20,
			Style:   outline(1.5),
		}
	}
	return geom.Geometry{
		geom.Text{
			At:      geom.Point{X: cfg.Width / 2, Y: 50},
			Content: title,
			Size:    32,
			Anchor:  "middle",
			Style:   outline(2),
		},
		summary("TOTAL", totals.Total, cfg.Height-60),
		summary("TODAY", totals.Today, cfg.Height-30),
	}
}

// PlainText flattens a text shape and its spans.
func PlainText(t geom.Text) string {
	s := t.Content
	for _, sp := range t.Spans {
		s += sp.Content
	}
	return s
}
