package scene

import (
	"math"
	"math/rand/v2"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/geom"
	"github.com/mna11/ReadMe3D/internal/core/iso"
	"github.com/mna11/ReadMe3D/internal/core/voxel"
)

// Builder is not safe for concurrent use: it owns a random source.
type Builder struct {
	cfg  Config
	font *voxel.Font
	rnd  *rand.Rand
}

// NewBuilder uses an unseeded generator when rnd is nil.
func NewBuilder(cfg Config, rnd *rand.Rand) *Builder {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{
		cfg:  cfg,
		font: voxel.Default(),
		rnd:  rnd,
	}
}

func (b *Builder) Config() Config {
	return b.cfg
}

// lot is the footprint of one day.
type lot struct {
	origin iso.GridPoint
	day    domain.ActivityDay
}

func (l lot) center(cfg Config) iso.GridPoint {
	return l.origin.Add(cfg.BuildingWidth/2, cfg.BuildingDepth/2, 0)
}

func (b *Builder) lots(days []domain.ActivityDay) []lot {
	out := make([]lot, len(days))
	for i, d := range days {
		out[i] = lot{
			origin: iso.GridPoint{X: b.cfg.LotX, Y: b.cfg.LotStartY + float64(i)*b.cfg.LotSpacing},
			day:    d,
		}
	}
	return out
}

// Build produces the unsorted scene for the trailing window of days, oldest
// first. Random choices are made here so every Draw closure is deterministic.
func (b *Builder) Build(days []domain.ActivityDay) []Object {
	lots := b.lots(b.cfg.Trailing(days))

	var data []Object
	for _, l := range lots {
		if l.day.Count == 0 {
			data = append(data, b.lamp(l)...)
		} else {
			data = append(data, b.building(l)...)
		}
	}

	back, front := b.sentinels(data)
	gap := b.cfg.SentinelGap

	objects := make([]Object, 0, len(data)+4)
	objects = append(objects,
		b.grass(back-3*gap),
		b.road(back-2*gap),
		b.roadMarkings(back-gap),
	)
	objects = append(objects, data...)
	objects = append(objects, b.car(lots, front+gap))
	return objects
}

// sentinels returns the smallest and largest data depth.
func (b *Builder) sentinels(data []Object) (min, max float64) {
	if len(data) == 0 {
		return 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, o := range data {
		min = math.Min(min, o.Depth)
		max = math.Max(max, o.Depth)
	}
	return min, max
}

func (b *Builder) grass(depth float64) Object {
	cfg := b.cfg
	field := cfg.Grass
	base := iso.NewBlock(field.MinX, field.MinY, 0, field.W(), field.D(), 0, cfg.Palettes.Grass)

	speckles := make([]iso.Block, 0, cfg.GrassSpeckles)
	for tries := 0; len(speckles) < cfg.GrassSpeckles && tries < 10*cfg.GrassSpeckles; tries++ {
		x := field.MinX + b.rnd.Float64()*(field.W()-2)
		y := field.MinY + b.rnd.Float64()*(field.D()-2)
		if cfg.Road.Contains(x, y) || cfg.Road.Contains(x+2, y+2) {
			continue
		}
		speckles = append(speckles, iso.NewBlock(x, y, 0, 2, 2, 0.5, cfg.Palettes.GrassSpeckle))
	}

	p := cfg.Projection
	return Object{
		Kind:  KindTerrain,
		Depth: depth,
		Draw: func() geom.Geometry {
			return append(p.Block(base), p.Blocks(speckles...)...)
		},
	}
}

func (b *Builder) road(depth float64) Object {
	cfg := b.cfg
	r := cfg.Road
	surface := iso.NewBlock(r.MinX, r.MinY, 0, r.W(), r.D(), 0, cfg.Palettes.Road)
	p := cfg.Projection
	return Object{
		Kind:  KindRoad,
		Depth: depth,
		Draw:  func() geom.Geometry { return p.Block(surface) },
	}
}

func (b *Builder) roadMarkings(depth float64) Object {
	cfg := b.cfg
	r := cfg.Road
	x := r.MinX + r.W()/2 - cfg.DashWidth/2

	var dashes []iso.Block
	if cfg.DashLength > 0 {
		for y := r.MinY + cfg.DashGap/2; y+cfg.DashLength <= r.MaxY; y += cfg.DashLength + cfg.DashGap {
			dashes = append(dashes, iso.NewBlock(x, y, 0, cfg.DashWidth, cfg.DashLength, 0, cfg.Palettes.RoadMark))
		}
	}

	p := cfg.Projection
	return Object{
		Kind:  KindRoad,
		Depth: depth,
		Draw:  func() geom.Geometry { return p.Blocks(dashes...) },
	}
}
