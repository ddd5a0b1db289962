package model

// Settings holds workspace-level application preferences.
type Settings struct {
	Theme           string   `json:"theme"` // "light" | "dark"
	Autosave        bool     `json:"autosave"`
	DefaultProvider Provider `json:"default_provider"`
}

// DefaultSettings is what an absent or unparsable settings slot loads as.
func DefaultSettings() Settings {
	return Settings{
		Theme:           "light",
		Autosave:        true,
		DefaultProvider: ProviderOpenAI,
	}
}
