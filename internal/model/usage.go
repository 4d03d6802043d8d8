package model

// DailyUsage is one row per user per UTC calendar day.
type DailyUsage struct {
	UserID      string `json:"user_id"`
	Day         string `json:"day"`
	PromptCount int    `json:"prompt_count"`
}
