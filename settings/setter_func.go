package settings

import (
	"encoding/json"
	"fmt"
	"log"
)

func (s *PlannerSettings) SetRowEstimate(jsonValue string) error {
	log.Printf("[TRACE] SetRowEstimate %s", jsonValue)
	var rows float64
	if err := json.Unmarshal([]byte(jsonValue), &rows); err != nil {
		return fmt.Errorf("%s must be a number: %w", SettingKeyRowEstimate, err)
	}
	s.RowEstimate = rows
	return nil
}

func (s *PlannerSettings) SetStartupCost(jsonValue string) error {
	log.Printf("[TRACE] SetStartupCost %s", jsonValue)
	var cost float64
	if err := json.Unmarshal([]byte(jsonValue), &cost); err != nil {
		return fmt.Errorf("%s must be a number: %w", SettingKeyStartupCost, err)
	}
	s.StartupCost = cost
	return nil
}

func (s *PlannerSettings) SetTotalCost(jsonValue string) error {
	log.Printf("[TRACE] SetTotalCost %s", jsonValue)
	var cost float64
	if err := json.Unmarshal([]byte(jsonValue), &cost); err != nil {
		return fmt.Errorf("%s must be a number: %w", SettingKeyTotalCost, err)
	}
	s.TotalCost = cost
	return nil
}
