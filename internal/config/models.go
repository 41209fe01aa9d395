package config

// CurrentVersion is the only preferences file version understood.
const CurrentVersion = 1

// Preferences represents the user's preferences file.
type Preferences struct {
	Version int `yaml:"version"`

	// ConfirmOverwrite asks for confirmation before an input firmware file
	// is rewritten in place (interactive terminals only)
	ConfirmOverwrite bool `yaml:"confirm_overwrite"`

	// Backup copies the original firmware to <path>.bak before rewriting it
	Backup bool `yaml:"backup"`

	// LogLevel enables logging when APDEFAULTS_LOG_LEVEL is not set
	LogLevel string `yaml:"log_level,omitempty"`
}

// NewPreferences creates Preferences with default values.
func NewPreferences() *Preferences {
	return &Preferences{
		Version:          CurrentVersion,
		ConfirmOverwrite: true,
		Backup:           false,
	}
}
