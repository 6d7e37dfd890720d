// Package priority scores pending projects for crew placement.
package priority

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"field-scheduler/internal/models"
)

// ErrUnknownPreset is returned when a preset name is not one of the known presets
var ErrUnknownPreset = errors.New("unknown scoring preset")

// Preset selects a weighting of the score components
type Preset string

const (
	PresetBalanced     Preset = "balanced"
	PresetRevenueFirst Preset = "revenue-first"
	PresetPEPriority   Preset = "pe-priority"
	PresetUrgencyFirst Preset = "urgency-first"
)

// Weights multiplies the revenue, PE and urgency components
type Weights struct {
	Revenue float64 `json:"revenue"`
	PE      float64 `json:"pe"`
	Urgency float64 `json:"urgency"`
}

// Score component caps and bonuses
const (
	RevenueCap     = 100.0
	RevenueDivisor = 1000.0
	PEBonus        = 50.0
	OverdueCap     = 200.0
	OverduePerDay  = 2.0
	UrgencyWindow  = 14.0
	UrgencyPerDay  = 3.0
	RTBBonus       = 30.0
)

var presetWeights = map[Preset]Weights{
	PresetBalanced:     {Revenue: 1, PE: 1, Urgency: 1},
	PresetRevenueFirst: {Revenue: 3, PE: 0.5, Urgency: 0.5},
	PresetPEPriority:   {Revenue: 0.5, PE: 3, Urgency: 1.5},
	PresetUrgencyFirst: {Revenue: 0.5, PE: 1, Urgency: 3},
}

// Presets lists the known presets in display order
func Presets() []Preset {
	return []Preset{PresetBalanced, PresetRevenueFirst, PresetPEPriority, PresetUrgencyFirst}
}

func init() {
	for _, p := range Presets() {
		if _, ok := presetWeights[p]; !ok {
			panic(fmt.Sprintf("priority: preset %q has no weights", p))
		}
	}
}

// ParsePreset validates a preset name. An empty name selects the balanced preset.
func ParsePreset(s string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PresetBalanced, nil
	}
	if _, ok := presetWeights[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPreset, s)
	}
	return p, nil
}

// Valid reports whether p is a known preset
func (p Preset) Valid() bool {
	_, ok := presetWeights[p]
	return ok
}

// Weights returns the weight triple for the preset. Unknown presets fall back to balanced.
func (p Preset) Weights() Weights {
	if w, ok := presetWeights[p]; ok {
		return w
	}
	return presetWeights[PresetBalanced]
}

// UnmarshalText validates presets decoded from JSON, YAML or config
func (p *Preset) UnmarshalText(text []byte) error {
	parsed, err := ParsePreset(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Components is the unweighted breakdown of a project's score
type Components struct {
	Revenue float64 `json:"revenue"`
	PE      float64 `json:"pe"`
	Urgency float64 `json:"urgency"`
	RTB     float64 `json:"rtb"`
}

// Map returns the components keyed by name, for attaching to schedule entries
func (c Components) Map() map[string]float64 {
	return map[string]float64{
		"revenue": c.Revenue,
		"pe":      c.PE,
		"urgency": c.Urgency,
		"rtb":     c.RTB,
	}
}

// ComputeComponents derives the unweighted score components of a project
func ComputeComponents(p *models.Project) Components {
	c := Components{
		Revenue: math.Min(RevenueCap, p.Amount/RevenueDivisor),
	}
	if p.IsPE {
		c.PE = PEBonus
	}
	if p.DaysToInstall != nil {
		d := *p.DaysToInstall
		switch {
		case d < 0:
			c.Urgency = math.Min(OverdueCap, math.Abs(d)*OverduePerDay)
		case d <= UrgencyWindow:
			c.Urgency = (UrgencyWindow - d) * UrgencyPerDay
		}
	}
	if p.IsRTB() {
		c.RTB = RTBBonus
	}
	return c
}

// Total applies the preset weights. The RTB bonus is not weighted.
func (c Components) Total(w Weights) float64 {
	return c.Revenue*w.Revenue + c.PE*w.PE + c.Urgency*w.Urgency + c.RTB
}

// Score returns the weighted priority of a project under a preset
func Score(p *models.Project, preset Preset) float64 {
	return ComputeComponents(p).Total(preset.Weights())
}
