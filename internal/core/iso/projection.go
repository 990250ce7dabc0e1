// Package iso implements the isometric projection and the cuboid block
// primitive the whole city is built from.
package iso

import "github.com/mna11/ReadMe3D/internal/core/geom"

// GridPoint is a position in the abstract grid; Z is height.
type GridPoint struct {
	X, Y, Z float64
}

func (p GridPoint) Add(dx, dy, dz float64) GridPoint {
	return GridPoint{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Depth is the painter's key of the point: larger values are nearer the viewer.
func (p GridPoint) Depth() float64 {
	return p.X + p.Y
}

// Projection maps grid coordinates to screen pixels. TileWidth and TileHeight
// are the half extents of one grid tile.
type Projection struct {
	OriginX    float64
	OriginY    float64
	TileWidth  float64
	TileHeight float64
}

func DefaultProjection() Projection {
	return Projection{TileWidth: 1, TileHeight: 0.5}
}

func (p Projection) Project(gx, gy, gz float64) geom.Point {
	return geom.Point{
		X: p.OriginX + (gx-gy)*p.TileWidth,
		Y: p.OriginY + (gx+gy)*p.TileHeight - gz,
	}
}

func (p Projection) ProjectPoint(g GridPoint) geom.Point {
	return p.Project(g.X, g.Y, g.Z)
}
