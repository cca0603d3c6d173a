package settings

type SettingKey string

const (
	SettingKeyRowEstimate SettingKey = "row_estimate"
	SettingKeyStartupCost SettingKey = "startup_cost"
	SettingKeyTotalCost   SettingKey = "total_cost"
)
