package scene

import (
	"strconv"

	"github.com/mna11/ReadMe3D/internal/core/geom"
	"github.com/mna11/ReadMe3D/internal/core/iso"
)

const (
	lampPoleSize  = 3.0
	lampGlassSize = 8
	lampGlassH    = 9
	lampCapSize   = 10
	lampCapH      = 2
	glowRadius    = 40
	windowInset   = 10
	lowestWindow  = 4
)

func (b *Builder) lamp(l lot) []Object {
	cfg := b.cfg
	pal := cfg.Palettes
	p := cfg.Projection
	c := l.center(cfg)

	pole := iso.NewBlock(c.X-lampPoleSize/2, c.Y-lampPoleSize/2, 0, lampPoleSize, lampPoleSize, cfg.LampHeight, pal.LampPole)

	glass := iso.NewBlock(c.X-lampGlassSize/2, c.Y-lampGlassSize/2, cfg.LampHeight, lampGlassSize, lampGlassSize, lampGlassH, pal.LampGlass)
	glass.Opacity = 0.9
	glass.Class = "lamp-light"

	capZ := cfg.LampHeight + lampGlassH
	hood := iso.NewBlock(c.X-lampCapSize/2, c.Y-lampCapSize/2, capZ, lampCapSize, lampCapSize, lampCapH, pal.LampPole)

	glow := geom.Ellipse{
		Center: p.Project(c.X, c.Y, 0),
		RX:     glowRadius * p.TileWidth,
		RY:     glowRadius * p.TileHeight,
		Style:  geom.Style{Fill: pal.LampGlow, Opacity: 0.2, Class: "lamp-glow"},
	}

	day := l.day
	lampObj := Object{
		Kind:   KindLamp,
		Depth:  l.origin.Depth(),
		Day:    &day,
		Height: capZ + lampCapH,
		Draw: func() geom.Geometry {
			out := geom.Geometry{glow}
			return append(out, p.Blocks(pole, glass, hood)...)
		},
	}

	return append([]Object{lampObj}, b.labels(l, capZ+lampCapH)...)
}

func (b *Builder) building(l lot) []Object {
	cfg := b.cfg
	pal := cfg.Palettes
	p := cfg.Projection
	h := cfg.HeightFor(l.day.Count)
	o := l.origin

	body := iso.NewBlock(o.X, o.Y, 0, cfg.BuildingWidth, cfg.BuildingDepth, h, pal.Building)
	windows := b.windows(o, h)

	day := l.day
	obj := Object{
		Kind:   KindBuilding,
		Depth:  o.Depth(),
		Day:    &day,
		Height: h,
		Draw: func() geom.Geometry {
			return append(p.Block(body), p.Blocks(windows...)...)
		},
	}
	return append([]Object{obj}, b.labels(l, h)...)
}

// windows places two panes per floor on each visible side face. Panes are
// zero-thickness blocks lying in the face plane.
func (b *Builder) windows(o iso.GridPoint, h float64) []iso.Block {
	cfg := b.cfg
	pane := cfg.WindowPane
	w, d := cfg.BuildingWidth, cfg.BuildingDepth

	var out []iso.Block
	for z := h - windowInset - pane; z >= lowestWindow; z -= cfg.FloorSpacing {
		for _, f := range []float64{0.25, 0.75} {
			right := iso.NewBlock(o.X+w, o.Y+d*f-pane/2, z, 0, pane, pane, iso.Palette{})
			left := iso.NewBlock(o.X+w*f-pane/2, o.Y+d, z, pane, 0, pane, iso.Palette{})
			out = append(out, b.light(right), b.light(left))
		}
	}
	return out
}

func (b *Builder) light(pane iso.Block) iso.Block {
	if b.rnd.Float64() < b.cfg.WindowLitProbability {
		pane.Palette = b.cfg.Palettes.WindowLit
		pane.Class = "window"
		return pane
	}
	pane.Palette = b.cfg.Palettes.WindowUnlit
	return pane
}

// labels stacks the count and the weekday name above top.
func (b *Builder) labels(l lot, top float64) []Object {
	cfg := b.cfg
	p := cfg.Projection
	font := b.font
	c := l.center(cfg)

	countText := strconv.Itoa(l.day.Count)
	dayText := l.day.WeekdayName()

	countAt := iso.GridPoint{X: c.X, Y: c.Y, Z: top + cfg.LabelGap}
	dayAt := countAt.Add(0, 0, font.Height(cfg.LabelScale)+cfg.LabelLineGap)

	day := l.day
	mk := func(text string, at iso.GridPoint, color string) Object {
		return Object{
			Kind:  KindLabel,
			Depth: c.Depth(),
			Day:   &day,
			Label: text,
			Draw: func() geom.Geometry {
				return font.Centered(p, text, at, color, cfg.LabelScale)
			},
		}
	}

	return []Object{
		mk(countText, countAt, cfg.Palettes.CountLabel),
		mk(dayText, dayAt, cfg.Palettes.DayLabel),
	}
}
