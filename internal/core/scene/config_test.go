package scene_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mna11/ReadMe3D/internal/core/scene"
)

func TestConfig_HeightFor(t *testing.T) {
	for _, formula := range []scene.HeightFormula{scene.HeightLinear, scene.HeightLog} {
		t.Run(string(formula), func(t *testing.T) {
			cfg := scene.DefaultConfig()
			cfg.HeightFormula = formula
			sat := cfg.SaturationCount()

			prev := cfg.HeightFor(0)
			assert.Equal(t, cfg.MinHeight, prev)

			for c := 1; c <= sat; c++ {
				h := cfg.HeightFor(c)
				assert.GreaterOrEqual(t, h, prev, "count %d", c)
				assert.GreaterOrEqual(t, h, cfg.MinHeight)
				assert.LessOrEqual(t, h, cfg.MaxHeight)
				prev = h
			}

			assert.Equal(t, cfg.MaxHeight, cfg.HeightFor(sat))
			assert.Equal(t, cfg.MaxHeight, cfg.HeightFor(sat+1))
			assert.Equal(t, cfg.MaxHeight, cfg.HeightFor(sat*100))
			assert.Less(t, cfg.HeightFor(sat-1), cfg.MaxHeight)
		})
	}
}

func TestConfig_HeightForDefaults(t *testing.T) {
	cfg := scene.DefaultConfig()

	assert.Equal(t, 50.0, cfg.HeightFor(1))
	assert.Equal(t, 70.0, cfg.HeightFor(3))
	assert.Equal(t, 160.0, cfg.HeightFor(12))
	assert.Equal(t, 12, cfg.SaturationCount())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, scene.DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*scene.Config)
	}{
		{"Window size 5", func(c *scene.Config) { c.WindowSize = 5 }},
		{"Unknown formula", func(c *scene.Config) { c.HeightFormula = "cubic" }},
		{"Inverted heights", func(c *scene.Config) { c.MaxHeight = c.MinHeight - 1 }},
		{"Zero slope", func(c *scene.Config) { c.HeightPerCount = 0 }},
		{"Probability above one", func(c *scene.Config) { c.WindowLitProbability = 1.5 }},
		{"Overlapping lots", func(c *scene.Config) { c.LotSpacing = c.BuildingDepth }},
		{"Zero sentinel gap", func(c *scene.Config) { c.SentinelGap = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scene.DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), scene.ErrInvalidConfig)
		})
	}

	t.Run("Window size 6 is accepted", func(t *testing.T) {
		cfg := scene.DefaultConfig()
		cfg.WindowSize = 6
		assert.NoError(t, cfg.Validate())
	})
}
