package config

import (
	"fmt"
	"strings"

	"field-scheduler/internal/models"
	"field-scheduler/internal/priority"
)

// LocationConfig lists the crews, install director and timezone of one location
type LocationConfig struct {
	Crews    []models.Crew `json:"crews"`
	Director string        `json:"director"`
	Timezone string        `json:"timezone"`
}

// SchedulingConfig holds the optimizer defaults and the location roster
type SchedulingConfig struct {
	Preset    priority.Preset           `json:"preset"`
	Locations map[string]LocationConfig `json:"locations"`
}

func (c *SchedulingConfig) SetDefaults() {
	if c.Preset == "" {
		c.Preset = priority.PresetBalanced
	}
}

func (c SchedulingConfig) Validate() error {
	if !c.Preset.Valid() {
		return fmt.Errorf("%w: scheduling.preset %q", ErrInvalidConfig, c.Preset)
	}
	for loc, lc := range c.Locations {
		seen := make(map[string]bool, len(lc.Crews))
		for _, crew := range lc.Crews {
			name := strings.TrimSpace(crew.Name)
			if name == "" {
				return fmt.Errorf("%w: location %s has a crew without a name", ErrInvalidConfig, loc)
			}
			if seen[name] {
				return fmt.Errorf("%w: location %s lists crew %s twice", ErrInvalidConfig, loc, name)
			}
			seen[name] = true
		}
	}
	return nil
}

// CrewsByLocation returns the crew roster keyed by location. Each crew's
// Location is filled from its key when blank.
func (c SchedulingConfig) CrewsByLocation() map[string][]models.Crew {
	out := make(map[string][]models.Crew, len(c.Locations))
	for loc, lc := range c.Locations {
		crews := make([]models.Crew, len(lc.Crews))
		copy(crews, lc.Crews)
		for i := range crews {
			if crews[i].Location == "" {
				crews[i].Location = loc
			}
		}
		out[loc] = crews
	}
	return out
}

func (c SchedulingConfig) DirectorsByLocation() map[string]string {
	out := make(map[string]string, len(c.Locations))
	for loc, lc := range c.Locations {
		if lc.Director != "" {
			out[loc] = lc.Director
		}
	}
	return out
}

func (c SchedulingConfig) TimezonesByLocation() map[string]string {
	out := make(map[string]string, len(c.Locations))
	for loc, lc := range c.Locations {
		if lc.Timezone != "" {
			out[loc] = lc.Timezone
		}
	}
	return out
}
