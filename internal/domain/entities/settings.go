package entities

// SettingsKey is the storage key of the single persisted settings blob.
const SettingsKey = "deskimager_state"

// Settings is everything that survives a restart.
type Settings struct {
	ServerURL     string            `json:"server_url" bson:"server_url"`
	ActiveAgent   string            `json:"active_agent,omitempty" bson:"active_agent,omitempty"`
	Directories   []Directory       `json:"directories" bson:"directories"`
	SystemPrompts map[string]string `json:"system_prompts,omitempty" bson:"system_prompts,omitempty"`
}
