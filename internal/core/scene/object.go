// Package scene turns an activity window into depth-tagged scene objects and
// composites them back to front.
package scene

import (
	"sort"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/geom"
)

type Kind string

const (
	KindTerrain  Kind = "terrain"
	KindRoad     Kind = "road"
	KindLamp     Kind = "lamp"
	KindBuilding Kind = "building"
	KindLabel    Kind = "label"
	KindVehicle  Kind = "vehicle"
)

// Object is one depth-sorted unit of the scene. Draw must be pure: calling it
// again yields the same geometry.
type Object struct {
	Kind  Kind
	Depth float64
	Draw  func() geom.Geometry

	// Inspection fields, set for data-driven objects.
	Day    *domain.ActivityDay
	Height float64
	Label  string
}

// Order returns a copy of objects stable-sorted by ascending depth.
func Order(objects []Object) []Object {
	out := make([]Object, len(objects))
	copy(out, objects)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth < out[j].Depth
	})
	return out
}

// Composite draws objects far to near. Objects at equal depth keep their
// insertion order.
func Composite(objects []Object) geom.Geometry {
	var out geom.Geometry
	for _, o := range Order(objects) {
		if o.Draw == nil {
			continue
		}
		out = append(out, o.Draw()...)
	}
	return out
}

// Filter returns the objects of the given kind in scene order.
func Filter(objects []Object, kind Kind) []Object {
	var out []Object
	for _, o := range objects {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}
