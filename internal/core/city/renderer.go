// Package city is the single entry point of the rendering core: it builds,
// composites, frames and encodes one contribution window.
package city

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/scene"
	"github.com/mna11/ReadMe3D/internal/core/svg"
)

// Renderer is safe for concurrent use. The mutex only guards the random
// source, everything else is immutable.
type Renderer struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	scene scene.Config
	frame frame.Config
}

func NewRenderer(sceneCfg scene.Config, frameCfg frame.Config, rnd *rand.Rand) (*Renderer, error) {
	if err := sceneCfg.Validate(); err != nil {
		return nil, err
	}
	if frameCfg.Width <= 0 || frameCfg.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas %vx%v", scene.ErrInvalidConfig, frameCfg.Width, frameCfg.Height)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Renderer{rnd: rnd, scene: sceneCfg, frame: frameCfg}, nil
}

// SeededRand returns a reproducible source, or nil for seed 0 so the
// renderer picks a random one.
func SeededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// NewDefault renders with the stock layout and an optional seed (0 = random).
func NewDefault(seed uint64) *Renderer {
	r, err := NewRenderer(scene.DefaultConfig(), frame.DefaultConfig(), SeededRand(seed))
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) WindowSize() int {
	return r.scene.WindowSize
}

// Objects exposes the unsorted scene for days.
func (r *Renderer) Objects(days []domain.ActivityDay) []scene.Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	return scene.NewBuilder(r.scene, r.rnd).Build(days)
}

// Document assembles the frame for the trailing window of days without
// encoding it. Today is always the last day of that window. An empty title
// uses the configured one.
func (r *Renderer) Document(days []domain.ActivityDay, totals domain.Totals, title string) *frame.Document {
	window := r.scene.Trailing(days)
	totals = domain.TotalsFor(totals.Total, window)

	r.mu.Lock()
	defer r.mu.Unlock()

	objects := scene.NewBuilder(r.scene, r.rnd).Build(window)
	fc := r.frame
	fc.Rand = r.rnd
	return frame.Assemble(fc, scene.Composite(objects), totals, title)
}

// Render returns the SVG for a validated series. Only the trailing window is drawn.
func (r *Renderer) Render(days []domain.ActivityDay, totals domain.Totals) string {
	return svg.Encode(r.Document(days, totals, ""))
}
