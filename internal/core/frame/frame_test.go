package frame_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/geom"
)

func seededConfig() frame.Config {
	cfg := frame.DefaultConfig()
	cfg.Rand = rand.New(rand.NewPCG(9, 9))
	return cfg
}

func overlayTexts(doc *frame.Document) []string {
	var out []string
	for _, s := range doc.Overlay {
		if t, ok := s.(geom.Text); ok {
			out = append(out, frame.PlainText(t))
		}
	}
	return out
}

func TestAssemble_Labels(t *testing.T) {
	doc := frame.Assemble(seededConfig(), nil, domain.Totals{Total: 23, Today: 12}, "")

	assert.Equal(t, []string{"Contribution City", "TOTAL: 23", "TODAY: 12"}, overlayTexts(doc))
	assert.Equal(t, frame.DefaultFontFamily, doc.FontFamily)
}

func TestAssemble_TitleOverride(t *testing.T) {
	doc := frame.Assemble(seededConfig(), nil, domain.Totals{}, "octocat's city")

	assert.Equal(t, "octocat's city", doc.Title)
	assert.Equal(t, "octocat's city", overlayTexts(doc)[0])
}

func TestAssemble_SceneIsTranslated(t *testing.T) {
	scene := geom.Geometry{geom.Polygon{Points: []geom.Point{{X: 1, Y: 2}}}}
	cfg := seededConfig()

	doc := frame.Assemble(cfg, scene, domain.Totals{}, "")

	assert.Equal(t, cfg.SceneOffset, doc.Scene.Offset)
	assert.Equal(t, scene, doc.Scene.Shapes)
	assert.Equal(t, 900.0, doc.Width)
	assert.Equal(t, 500.0, doc.Height)
}

func TestAssemble_StarsInUpperHalf(t *testing.T) {
	cfg := seededConfig()
	doc := frame.Assemble(cfg, nil, domain.Totals{}, "")

	stars := 0
	for _, s := range doc.Backdrop {
		r, ok := s.(geom.Rect)
		if !ok {
			continue
		}
		stars++
		assert.Equal(t, "star", r.Class)
		assert.Contains(t, r.CSS, "animation-delay")
		assert.GreaterOrEqual(t, r.Min.X, 0.0)
		assert.Less(t, r.Min.X, cfg.Width)
		assert.Less(t, r.Min.Y, cfg.Height/2)
	}
	assert.Equal(t, cfg.StarCount, stars)

	last, ok := doc.Backdrop[len(doc.Backdrop)-1].(geom.Group)
	require.True(t, ok, "moon is drawn after the stars")
	assert.Equal(t, cfg.MoonCenter, last.Offset)
	assert.Len(t, last.Shapes, 4)
}

func TestAssemble_SeededStarsAreReproducible(t *testing.T) {
	a := frame.Assemble(seededConfig(), nil, domain.Totals{}, "")
	b := frame.Assemble(seededConfig(), nil, domain.Totals{}, "")

	assert.Equal(t, a.Backdrop, b.Backdrop)
}
