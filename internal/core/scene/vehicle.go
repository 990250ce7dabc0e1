package scene

import (
	"github.com/mna11/ReadMe3D/internal/core/geom"
	"github.com/mna11/ReadMe3D/internal/core/iso"
)

const (
	carWidth   = 16
	carLength  = 30
	carBodyH   = 10
	carCabinH  = 8
	beamReach  = 64
	beamSpread = 12
)

// car parks one vehicle in the inner lane, just past the last lot, heading
// towards the viewer.
func (b *Builder) car(lots []lot, depth float64) Object {
	cfg := b.cfg
	pal := cfg.Palettes
	p := cfg.Projection

	y := cfg.LotStartY
	if n := len(lots); n > 0 {
		y = lots[n-1].origin.Y + cfg.BuildingDepth + cfg.CarGap
	}
	x := cfg.Road.MinX + (cfg.Road.W()/2-carWidth)/2

	body := iso.NewBlock(x, y, 0, carWidth, carLength, carBodyH, pal.CarBody)
	cabin := iso.NewBlock(x+2, y+7, carBodyH, carWidth-4, carLength-16, carCabinH, pal.CarCabin)

	front := y + carLength
	lights := []iso.Block{
		iso.NewBlock(x+2, front, 3, 3, 0, 3, iso.Flat(pal.Headlight)),
		iso.NewBlock(x+carWidth-5, front, 3, 3, 0, 3, iso.Flat(pal.Headlight)),
	}

	beam := geom.Polygon{
		Points: []geom.Point{
			p.Project(x+1, front, 0),
			p.Project(x+carWidth-1, front, 0),
			p.Project(x+carWidth+beamSpread, front+beamReach, 0),
			p.Project(x-beamSpread, front+beamReach, 0),
		},
		Style: geom.Style{Fill: pal.LampGlow, Opacity: 0.2, Class: "headlight"},
	}

	return Object{
		Kind:  KindVehicle,
		Depth: depth,
		Draw: func() geom.Geometry {
			out := geom.Geometry{beam}
			out = append(out, p.Blocks(body, cabin)...)
			return append(out, p.Blocks(lights...)...)
		},
	}
}
