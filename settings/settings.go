// Package settings holds the planner constants a wrapper reports to the
// host. These are constants, not estimates: cardinality and cost modelling
// are deliberately not implemented. Individual servers may override them
// through server options.
package settings

import "log"

type setterFunc func(string) error

// Reference defaults: zero rows, fixed path costs.
const (
	DefaultRowEstimate = 0
	DefaultStartupCost = 10
	DefaultTotalCost   = 0
)

type PlannerSettings struct {
	RowEstimate float64
	StartupCost float64
	TotalCost   float64

	// a map of handler functions which map setting keys to setters for
	// individual properties
	setters map[SettingKey]setterFunc
}

func NewPlannerSettings() *PlannerSettings {
	s := &PlannerSettings{
		RowEstimate: DefaultRowEstimate,
		StartupCost: DefaultStartupCost,
		TotalCost:   DefaultTotalCost,
	}
	s.setters = map[SettingKey]setterFunc{
		SettingKeyRowEstimate: s.SetRowEstimate,
		SettingKeyStartupCost: s.SetStartupCost,
		SettingKeyTotalCost:   s.SetTotalCost,
	}
	return s
}

// Apply sets a single property from its JSON-encoded value. Unknown keys
// are ignored - option lists carry plugin settings too.
func (s *PlannerSettings) Apply(key string, jsonValue string) error {
	if applySetting, found := s.setters[SettingKey(key)]; found {
		return applySetting(jsonValue)
	}
	log.Println("[TRACE] not a planner setting, skipping:", key, "=>", jsonValue)
	return nil
}

// ApplyOptions applies every recognized key from an option map.
func (s *PlannerSettings) ApplyOptions(opts map[string]string) error {
	for key, value := range opts {
		if err := s.Apply(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a copy safe to mutate per statement.
func (s *PlannerSettings) Clone() *PlannerSettings {
	clone := NewPlannerSettings()
	clone.RowEstimate = s.RowEstimate
	clone.StartupCost = s.StartupCost
	clone.TotalCost = s.TotalCost
	return clone
}
