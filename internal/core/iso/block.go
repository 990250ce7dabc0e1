package iso

import "github.com/mna11/ReadMe3D/internal/core/geom"

// None paints nothing on a face.
const None = geom.None

// Palette colours the three visible faces. Right and Left model two light
// exposures; Stroke is optional.
type Palette struct {
	Top         string
	Right       string
	Left        string
	Stroke      string
	StrokeWidth float64
}

// Flat returns a palette using one colour on every face.
func Flat(color string) Palette {
	return Palette{Top: color, Right: color, Left: color}
}

func (p Palette) WithStroke(color string, width float64) Palette {
	p.Stroke = color
	p.StrokeWidth = width
	return p
}

type Block struct {
	Origin  GridPoint
	W, D, H float64
	Palette Palette
	Opacity float64
	Class   string
}

func NewBlock(gx, gy, gz, w, d, h float64, palette Palette) Block {
	return Block{Origin: GridPoint{X: gx, Y: gy, Z: gz}, W: w, D: d, H: h, Palette: palette}
}

// Corners are the seven visible corners of a block. The bottom back-left
// corner is always hidden and never computed.
type Corners struct {
	TopBackLeft      geom.Point
	TopBackRight     geom.Point
	TopFrontRight    geom.Point
	TopFrontLeft     geom.Point
	BottomFrontRight geom.Point
	BottomFrontLeft  geom.Point
	BottomBackRight  geom.Point
}

func (p Projection) Corners(b Block) Corners {
	x, y, z := b.Origin.X, b.Origin.Y, b.Origin.Z
	top := z + b.H
	return Corners{
		TopBackLeft:      p.Project(x, y, top),
		TopBackRight:     p.Project(x+b.W, y, top),
		TopFrontRight:    p.Project(x+b.W, y+b.D, top),
		TopFrontLeft:     p.Project(x, y+b.D, top),
		BottomFrontRight: p.Project(x+b.W, y+b.D, z),
		BottomFrontLeft:  p.Project(x, y+b.D, z),
		BottomBackRight:  p.Project(x+b.W, y, z),
	}
}

// Block emits the top, right and left faces of b, always in that order.
func (p Projection) Block(b Block) geom.Geometry {
	c := p.Corners(b)

	faces := [3]struct {
		fill string
		pts  []geom.Point
	}{
		{b.Palette.Top, []geom.Point{c.TopBackLeft, c.TopBackRight, c.TopFrontRight, c.TopFrontLeft}},
		{b.Palette.Right, []geom.Point{c.TopBackRight, c.TopFrontRight, c.BottomFrontRight, c.BottomBackRight}},
		{b.Palette.Left, []geom.Point{c.TopFrontLeft, c.TopFrontRight, c.BottomFrontRight, c.BottomFrontLeft}},
	}

	out := make(geom.Geometry, 0, len(faces))
	for _, f := range faces {
		style := geom.Style{
			Fill:    f.fill,
			Opacity: b.Opacity,
			Class:   b.Class,
		}
		if style.Fill == "" {
			style.Fill = None
		}
		if style.Visible() && b.Palette.Stroke != "" {
			style.Stroke = b.Palette.Stroke
			style.StrokeWidth = b.Palette.StrokeWidth
		}
		out = append(out, geom.Polygon{Points: f.pts, Style: style})
	}
	return out
}

// Blocks renders several blocks in order into one geometry.
func (p Projection) Blocks(blocks ...Block) geom.Geometry {
	out := make(geom.Geometry, 0, 3*len(blocks))
	for _, b := range blocks {
		out = append(out, p.Block(b)...)
	}
	return out
}
