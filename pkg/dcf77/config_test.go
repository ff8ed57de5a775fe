package dcf77

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	c := NewConfig(DefaultSamplingRate)
	require.NoError(t, c.Validate())

	assert.Equal(t, 512, c.Window)
	assert.Equal(t, 51, c.ShortZone)
	assert.Equal(t, 102, c.LongZone)
	assert.Equal(t, 460, c.MinQuality)
	assert.Equal(t, 8, c.FineOffset)
	assert.Equal(t, 300, c.HoldOverLimit)
	assert.False(t, c.CheckParity)
	assert.Equal(t, HoldOverStrict, c.HoldOverPolicy)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"rate", func(c *Config) { c.SamplingRate = 0 }},
		{"window", func(c *Config) { c.Window = 0 }},
		{"short zone", func(c *Config) { c.ShortZone = 0 }},
		{"zone order", func(c *Config) { c.ShortZone = c.LongZone }},
		{"long zone", func(c *Config) { c.LongZone = c.Window }},
		{"quality", func(c *Config) { c.MinQuality = c.Window + 1 }},
		{"fine offset", func(c *Config) { c.FineOffset = c.ShortZone }},
		{"threshold", func(c *Config) { c.FineTuneThreshold = 0 }},
		{"shift", func(c *Config) { c.FineTuneShift = 0 }},
		{"hold-over", func(c *Config) { c.HoldOverLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfig(DefaultSamplingRate)
			tt.modify(&c)
			assert.ErrorIs(t, c.Validate(), ErrConfig)
		})
	}
}

func TestParseHoldOverPolicy(t *testing.T) {
	p, err := ParseHoldOverPolicy("")
	require.NoError(t, err)
	assert.Equal(t, HoldOverStrict, p)

	p, err = ParseHoldOverPolicy("lenient")
	require.NoError(t, err)
	assert.Equal(t, HoldOverLenient, p)
	assert.Equal(t, "lenient", p.String())

	_, err = ParseHoldOverPolicy("sometimes")
	assert.ErrorIs(t, err, ErrConfig)
}
