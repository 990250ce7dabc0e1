package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/iso"
)

type HeightFormula string

const (
	HeightLinear HeightFormula = "linear"
	HeightLog    HeightFormula = "log"
)

var ErrInvalidConfig = errors.New("invalid scene config")

// Palettes groups every colour the builder uses.
type Palettes struct {
	Grass        iso.Palette
	GrassSpeckle iso.Palette
	Road         iso.Palette
	RoadMark     iso.Palette
	Building     iso.Palette
	WindowLit    iso.Palette
	WindowUnlit  iso.Palette
	LampPole     iso.Palette
	LampGlass    iso.Palette
	LampGlow     string
	CarBody      iso.Palette
	CarCabin     iso.Palette
	Headlight    string
	DayLabel     string
	CountLabel   string
}

type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) W() float64 { return r.MaxX - r.MinX }
func (r Rect) D() float64 { return r.MaxY - r.MinY }

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Config collapses every layout knob of the city into one value.
type Config struct {
	Projection iso.Projection
	WindowSize int

	// Lots are laid out along +Y starting at (LotX, LotStartY).
	LotX          float64
	LotStartY     float64
	LotSpacing    float64
	BuildingWidth float64
	BuildingDepth float64

	HeightFormula  HeightFormula
	MinHeight      float64
	MaxHeight      float64
	HeightPerCount float64

	FloorSpacing         float64
	WindowPane           float64
	WindowLitProbability float64

	LampHeight float64

	LabelScale   float64
	LabelGap     float64
	LabelLineGap float64

	Grass         Rect
	GrassSpeckles int
	Road          Rect
	DashWidth     float64
	DashLength    float64
	DashGap       float64

	CarGap float64

	// SentinelGap separates the computed background/foreground depths from data depths.
	SentinelGap float64

	Palettes Palettes
}

func DefaultPalettes() Palettes {
	stroke := "#111111"
	return Palettes{
		Grass:        iso.Palette{Top: "#2a4a2a", Right: "#1f3a1f", Left: "#1a301a"}.WithStroke("#1a3a1a", 2),
		GrassSpeckle: iso.Flat("#3a5a3a"),
		Road:         iso.Palette{Top: "#2a2a2a", Right: "#1f1f1f", Left: "#1a1a1a"}.WithStroke("#1a1a1a", 2),
		RoadMark:     iso.Flat("#555555"),
		Building:     iso.Palette{Top: "#6a6a5a", Right: "#4a4a3a", Left: "#5a5a4a"}.WithStroke(stroke, 2),
		WindowLit:    iso.Flat("#ffdd66").WithStroke(stroke, 1),
		WindowUnlit:  iso.Flat("#2a2a22").WithStroke(stroke, 1),
		LampPole:     iso.Palette{Top: "#4a4a4a", Right: "#333333", Left: "#222222"}.WithStroke(stroke, 1),
		LampGlass:    iso.Palette{Top: "#fff2b3", Right: "#ffcc44", Left: "#ffdd66"}.WithStroke(stroke, 1),
		LampGlow:     "#ffdd66",
		CarBody:      iso.Palette{Top: "#4a90e2", Right: "#357abd", Left: "#2a5f94"}.WithStroke(stroke, 1.5),
		CarCabin:     iso.Palette{Top: "#6aa8f0", Right: "#4a90e2", Left: "#357abd"}.WithStroke(stroke, 1.5),
		Headlight:    "#fff6c8",
		DayLabel:     "#4a90e2",
		CountLabel:   "#ffdd66",
	}
}

func DefaultConfig() Config {
	return Config{
		Projection: iso.DefaultProjection(),
		WindowSize: domain.DefaultWindow,

		LotX:          160,
		LotStartY:     -200,
		LotSpacing:    60,
		BuildingWidth: 36,
		BuildingDepth: 36,

		HeightFormula:  HeightLinear,
		MinHeight:      40,
		MaxHeight:      160,
		HeightPerCount: 10,

		FloorSpacing:         14,
		WindowPane:           6,
		WindowLitProbability: 0.7,

		LampHeight: 60,

		LabelScale:   1.5,
		LabelGap:     10,
		LabelLineGap: 4,

		Grass:         Rect{MinX: -160, MinY: -260, MaxX: 300, MaxY: 260},
		GrassSpeckles: 200,
		Road:          Rect{MinX: 90, MinY: -260, MaxX: 140, MaxY: 260},
		DashWidth:     4,
		DashLength:    14,
		DashGap:       16,

		CarGap: 9,

		SentinelGap: 1,

		Palettes: DefaultPalettes(),
	}
}

func (c Config) Validate() error {
	if !domain.ValidWindowSize(c.WindowSize) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, domain.ErrInvalidWindowSize)
	}
	switch c.HeightFormula {
	case HeightLinear, HeightLog:
	default:
		return fmt.Errorf("%w: unknown height formula %q", ErrInvalidConfig, c.HeightFormula)
	}
	if c.MinHeight < 0 || c.MaxHeight < c.MinHeight {
		return fmt.Errorf("%w: height range [%v, %v]", ErrInvalidConfig, c.MinHeight, c.MaxHeight)
	}
	if c.HeightPerCount <= 0 {
		return fmt.Errorf("%w: height per count must be positive", ErrInvalidConfig)
	}
	if c.WindowLitProbability < 0 || c.WindowLitProbability > 1 {
		return fmt.Errorf("%w: window lit probability %v", ErrInvalidConfig, c.WindowLitProbability)
	}
	if c.LotSpacing <= math.Max(c.BuildingWidth, c.BuildingDepth) {
		return fmt.Errorf("%w: lot spacing must exceed the building footprint", ErrInvalidConfig)
	}
	if c.FloorSpacing <= 0 || c.LabelScale <= 0 || c.SentinelGap <= 0 {
		return fmt.Errorf("%w: spacing, label scale and sentinel gap must be positive", ErrInvalidConfig)
	}
	return nil
}

// HeightFor maps a count to a building height. It never drops below
// MinHeight and saturates at MaxHeight.
// Trailing returns the last WindowSize days of a series, oldest first. A
// shorter series is returned as is.
func (c Config) Trailing(days []domain.ActivityDay) []domain.ActivityDay {
	if c.WindowSize <= 0 || len(days) <= c.WindowSize {
		return days
	}
	return days[len(days)-c.WindowSize:]
}

func (c Config) HeightFor(count int) float64 {
	if count <= 0 {
		return c.MinHeight
	}
	var h float64
	switch c.HeightFormula {
	case HeightLog:
		h = c.MinHeight + c.HeightPerCount*math.Log2(1+float64(count))
	default:
		h = c.MinHeight + c.HeightPerCount*float64(count)
	}
	return math.Min(h, c.MaxHeight)
}

// SaturationCount is the smallest count whose building reaches MaxHeight.
func (c Config) SaturationCount() int {
	span := c.MaxHeight - c.MinHeight
	switch c.HeightFormula {
	case HeightLog:
		return int(math.Ceil(math.Exp2(span/c.HeightPerCount) - 1))
	default:
		return int(math.Ceil(span / c.HeightPerCount))
	}
}
