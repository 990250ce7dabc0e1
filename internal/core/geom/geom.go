// Package geom holds the 2D primitives every renderer in the city pipeline
// consumes. Shapes are plain values so a composed scene can be encoded to SVG
// or rasterised without re-running the scene builder.
package geom

// None is the fill value for an invisible face.
const None = "none"

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Shape is implemented by Polygon, Ellipse, Rect and Text.
type Shape interface {
	shape()
}

type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64 // 0 means opaque
	Class       string
	CSS         string
}

// Visible reports whether the fill paints anything.
func (s Style) Visible() bool {
	return s.Fill != "" && s.Fill != None
}

type Polygon struct {
	Points []Point
	Style
}

type Ellipse struct {
	Center Point
	RX, RY float64
	Style
}

type Rect struct {
	Min           Point
	Width, Height float64
	Style
}

// Span is a differently coloured run inside a Text.
type Span struct {
	Content string
	Fill    string
}

type Text struct {
	At      Point
	Content string
	Spans   []Span
	Size    float64
	Anchor  string // "", "middle" or "end"
	Style
}

func (Polygon) shape() {}
func (Ellipse) shape() {}
func (Rect) shape()    {}
func (Text) shape()    {}

// Geometry is an ordered list of shapes; later shapes paint over earlier ones.
type Geometry []Shape

// Group is a geometry translated as a unit.
type Group struct {
	Offset Point
	Shapes Geometry
	Class  string
}

func (Group) shape() {}

// Bounds returns the bounding box of all polygon points, ok is false when none exist.
func (g Geometry) Bounds() (min, max Point, ok bool) {
	for _, s := range g {
		p, isPoly := s.(Polygon)
		if !isPoly {
			continue
		}
		for _, pt := range p.Points {
			if !ok {
				min, max, ok = pt, pt, true
				continue
			}
			if pt.X < min.X {
				min.X = pt.X
			}
			if pt.Y < min.Y {
				min.Y = pt.Y
			}
			if pt.X > max.X {
				max.X = pt.X
			}
			if pt.Y > max.Y {
				max.Y = pt.Y
			}
		}
	}
	return min, max, ok
}

// Polygons filters the geometry down to its polygons.
func (g Geometry) Polygons() []Polygon {
	var out []Polygon
	for _, s := range g {
		if p, ok := s.(Polygon); ok {
			out = append(out, p)
		}
	}
	return out
}
