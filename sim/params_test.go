package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchParams returns a minimal valid batch parameter set for tests to tweak.
func batchParams() Params {
	return Params{
		Mode:             Batch,
		InitialSubstrate: 10,
		InitialBiomass:   0.1,
		InitialVolume:    1,
		MuMax:            0.3,
		Ks:               0.5,
		Yxs:              0.5,
		Yxp:              0.2,
		Duration:         24,
		TimeStep:         0.1,
	}
}

func TestParamsValidate_ValidBatch_NoError(t *testing.T) {
	p := batchParams()
	require.NoError(t, p.Validate())
}

func TestParamsValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown mode", func(p *Params) { p.Mode = "chemostat" }},
		{"negative substrate", func(p *Params) { p.InitialSubstrate = -1 }},
		{"negative biomass", func(p *Params) { p.InitialBiomass = -0.5 }},
		{"zero volume", func(p *Params) { p.InitialVolume = 0 }},
		{"zero ks", func(p *Params) { p.Ks = 0 }},
		{"zero y_xs", func(p *Params) { p.Yxs = 0 }},
		{"negative y_xp", func(p *Params) { p.Yxp = -0.1 }},
		{"negative mu_max", func(p *Params) { p.MuMax = -0.3 }},
		{"zero time step", func(p *Params) { p.TimeStep = 0 }},
		{"zero duration", func(p *Params) { p.Duration = 0 }},
		{"NaN feed rate", func(p *Params) { p.Mode = FedBatch; p.FeedRate = math.NaN() }},
		{"infinite ks", func(p *Params) { p.Ks = math.Inf(1) }},
		{"duration shorter than half a step", func(p *Params) { p.Duration = 0.04; p.TimeStep = 0.1 }},
		{"rfb without cycle time", func(p *Params) { p.Mode = RepeatedFedBatch; p.Cycles = 3 }},
		{"rfb without cycles", func(p *Params) { p.Mode = RepeatedFedBatch; p.CycleTime = 8 }},
		{"retention above one", func(p *Params) { p.Mode = BleedPerfusion; p.CellRetention = 1.5 }},
		{"negative bleed", func(p *Params) { p.Mode = BleedPerfusion; p.BleedRate = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := batchParams()
			tc.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParamsValidate_ZeroMuMax_Allowed(t *testing.T) {
	// A culture that cannot grow is a degenerate but legal configuration.
	p := batchParams()
	p.MuMax = 0
	assert.NoError(t, p.Validate())
}

func TestParamsSteps_RoundsToNearestStep(t *testing.T) {
	cases := []struct {
		duration, dt float64
		want         int
	}{
		{24, 0.1, 240},
		{1, 0.3, 3},   // horizon quantized down to 0.9h
		{1.6, 1.0, 2}, // rounds up
		{50, 0.1, 500},
	}
	for _, tc := range cases {
		p := batchParams()
		p.Duration = tc.duration
		p.TimeStep = tc.dt
		assert.Equal(t, tc.want, p.Steps(), "duration=%v dt=%v", tc.duration, tc.dt)
	}
}

func TestParseMode_NormalizesNames(t *testing.T) {
	cases := map[string]Mode{
		"batch":              Batch,
		"Batch":              Batch,
		"Fed-Batch":          FedBatch,
		"Repeated Fed-Batch": RepeatedFedBatch,
		"repeated-fed-batch": RepeatedFedBatch,
		"Bleed-Perfusion":    BleedPerfusion,
		" bleed-perfusion ":  BleedPerfusion,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestParseMode_UnknownName_ReturnsError(t *testing.T) {
	_, err := ParseMode("chemostat")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
