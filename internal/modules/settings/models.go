// Package settings holds the user-tunable dashboard preferences: qubit limit,
// auto-save, notifications, performance level and security level.
package settings

import (
	"errors"
	"time"
)

// Security levels, lowest first
const (
	SecurityLow     = "low"
	SecurityMedium  = "medium"
	SecurityHigh    = "high"
	SecurityMaximum = "maximum"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// SettingsKey is the kv key holding the saved settings
const SettingsKey = "rados_quantum_settings"

// ErrUnsupportedFormat is returned by Export for formats other than json and yaml
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Settings are the saved preferences
type Settings struct {
	MaxQubits     int    `json:"maxQubits" yaml:"maxQubits" validate:"min=1,max=100000"`
	AutoSave      bool   `json:"autoSave" yaml:"autoSave"`
	Notifications bool   `json:"notifications" yaml:"notifications"`
	Performance   int    `json:"performance" yaml:"performance" validate:"min=0,max=100,step=5"`
	SecurityLevel string `json:"securityLevel" yaml:"securityLevel" validate:"required,oneof=low medium high maximum"`
}

// Defaults returns the factory settings
func Defaults() Settings {
	return Settings{
		MaxQubits:     5,
		AutoSave:      true,
		Notifications: true,
		Performance:   75,
		SecurityLevel: SecurityHigh,
	}
}

// Export is the downloadable settings document
type Export struct {
	Settings  `yaml:",inline"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// ExportFile is a rendered export ready for download or upload
type ExportFile struct {
	Filename    string
	Format      string
	ContentType string
	Body        []byte
}

// SecurityLevelForSlider maps a 0..100 slider value to a level:
// <=25 low, <=50 medium, <=75 high, else maximum
func SecurityLevelForSlider(value int) string {
	switch {
	case value <= 25:
		return SecurityLow
	case value <= 50:
		return SecurityMedium
	case value <= 75:
		return SecurityHigh
	default:
		return SecurityMaximum
	}
}

// SliderForSecurityLevel is the inverse of SecurityLevelForSlider
func SliderForSecurityLevel(level string) int {
	switch level {
	case SecurityLow:
		return 25
	case SecurityMedium:
		return 50
	case SecurityHigh:
		return 75
	default:
		return 100
	}
}

func exportFilename(at time.Time, format string) string {
	ext := "json"
	if format == FormatYAML {
		ext = "yaml"
	}
	return "rados-quantum-settings-" + formatMillis(at) + "." + ext
}
