package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := NewPlannerSettings()
	assert.Equal(t, float64(DefaultRowEstimate), s.RowEstimate)
	assert.Equal(t, float64(DefaultStartupCost), s.StartupCost)
	assert.Equal(t, float64(DefaultTotalCost), s.TotalCost)
}

func TestApply(t *testing.T) {
	s := NewPlannerSettings()

	require.NoError(t, s.Apply("row_estimate", "250"))
	assert.Equal(t, float64(250), s.RowEstimate)

	require.NoError(t, s.Apply("startup_cost", "1.5"))
	assert.Equal(t, 1.5, s.StartupCost)

	// unknown keys are plugin options, not errors
	require.NoError(t, s.Apply("connection_string", `"whatever"`))

	err := s.Apply("total_cost", "not-a-number")
	assert.Error(t, err)
}

func TestApplyOptions(t *testing.T) {
	s := NewPlannerSettings()
	require.NoError(t, s.ApplyOptions(map[string]string{
		"row_estimate": "10",
		"total_cost":   "3",
		"table":        "users",
	}))
	assert.Equal(t, float64(10), s.RowEstimate)
	assert.Equal(t, float64(3), s.TotalCost)
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewPlannerSettings()
	clone := s.Clone()
	require.NoError(t, clone.Apply("row_estimate", "99"))
	assert.Equal(t, float64(DefaultRowEstimate), s.RowEstimate)
	assert.Equal(t, float64(99), clone.RowEstimate)
}
