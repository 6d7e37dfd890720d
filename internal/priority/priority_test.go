package priority

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"field-scheduler/internal/models"
)

func days(v float64) *float64 { return &v }

func TestScoreIsPure(t *testing.T) {
	p := &models.Project{ID: "p1", Amount: 42000, IsPE: true, Stage: "RTB", DaysToInstall: days(-3)}
	for _, preset := range Presets() {
		first := Score(p, preset)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Score(p, preset))
		}
	}
}

func TestRevenueComponentSaturates(t *testing.T) {
	prev := -1.0
	for _, amount := range []float64{0, 1000, 25000, 50000, 99999} {
		c := ComputeComponents(&models.Project{Amount: amount})
		assert.Greater(t, c.Revenue, prev, "amount %v", amount)
		prev = c.Revenue
	}
	for _, amount := range []float64{100000, 150000, 1e7} {
		c := ComputeComponents(&models.Project{Amount: amount})
		assert.Equal(t, RevenueCap, c.Revenue, "amount %v", amount)
	}
}

func TestUrgencyComponent(t *testing.T) {
	cases := []struct {
		name string
		dti  *float64
		want float64
	}{
		{"unknown deadline", nil, 0},
		{"due today", days(0), 42},
		{"due in a week", days(7), 21},
		{"edge of window", days(14), 0},
		{"far out", days(30), 0},
		{"one day overdue", days(-1), 2},
		{"overdue capped", days(-150), OverdueCap},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := ComputeComponents(&models.Project{DaysToInstall: tc.dti})
			assert.Equal(t, tc.want, c.Urgency)
		})
	}
}

func TestRTBBonusIsPresetIndependent(t *testing.T) {
	base := &models.Project{Amount: 10000}
	rtb := &models.Project{Amount: 10000, Stage: "Ready to Build"}
	for _, preset := range Presets() {
		assert.Equal(t, RTBBonus, Score(rtb, preset)-Score(base, preset), "preset %s", preset)
	}
}

func TestWeightedTotal(t *testing.T) {
	p := &models.Project{Amount: 20000, IsPE: true, DaysToInstall: days(10)}
	// revenue 20, pe 50, urgency 12
	assert.InDelta(t, 82, Score(p, PresetBalanced), 1e-9)
	assert.InDelta(t, 60+25+6, Score(p, PresetRevenueFirst), 1e-9)
	assert.InDelta(t, 10+150+18, Score(p, PresetPEPriority), 1e-9)
	assert.InDelta(t, 10+50+36, Score(p, PresetUrgencyFirst), 1e-9)
}

func TestPresetsDisagreeOnRanking(t *testing.T) {
	projects := []*models.Project{
		{ID: "revenue", Amount: 100000},
		{ID: "pe", IsPE: true},
		{ID: "urgent", DaysToInstall: days(-30)},
	}

	rankings := make(map[string]bool)
	for _, preset := range Presets() {
		ranked := append([]*models.Project(nil), projects...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return Score(ranked[i], preset) > Score(ranked[j], preset)
		})
		ids := make([]string, len(ranked))
		for i, p := range ranked {
			ids[i] = p.ID
		}
		rankings[strings.Join(ids, ">")] = true
	}
	assert.Greater(t, len(rankings), 1, "all presets produced the same ranking: %v", rankings)
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset(" Revenue-First ")
	require.NoError(t, err)
	assert.Equal(t, PresetRevenueFirst, p)

	p, err = ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, PresetBalanced, p)

	_, err = ParsePreset("cheapest")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPreset))
}

func TestPresetUnmarshalText(t *testing.T) {
	var p Preset
	require.NoError(t, p.UnmarshalText([]byte("urgency-first")))
	assert.Equal(t, PresetUrgencyFirst, p)
	assert.ErrorIs(t, p.UnmarshalText([]byte("bogus")), ErrUnknownPreset)
}

func TestUnknownPresetWeightsFallBack(t *testing.T) {
	assert.False(t, Preset("bogus").Valid())
	assert.Equal(t, PresetBalanced.Weights(), Preset("bogus").Weights())
}
