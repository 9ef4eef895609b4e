package model

import "time"

// DefaultVersionMarker is the substring that identifies a versioned top-level project.
const DefaultVersionMarker = "GO2 Version"

// VersionConfig is the persisted whitelist of current top-level versions.
type VersionConfig struct {
	CurrentVersions []string  `yaml:"current_versions"`
	VersionHistory  []string  `yaml:"version_history"` // Set semantics, kept sorted.
	AutoDetect      bool      `yaml:"auto_detect"`
	MaxVersions     int       `yaml:"max_versions"`
	LastUpdated     time.Time `yaml:"last_updated"`
	Notes           string    `yaml:"notes,omitempty"`
}

// DefaultVersionConfig returns the seed configuration used when nothing is persisted.
func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		CurrentVersions: []string{"GO2 Version 612", "GO2 Version New"},
		VersionHistory: []string{
			"GO2 Version 6.09",
			"GO2 Version 6.10",
			"GO2 Version 6.11",
			"GO2 Version 612",
			"GO2 Version New",
		},
		AutoDetect:  true,
		MaxVersions: 3,
	}
}

// VersionReport is the outcome of one version detection pass.
type VersionReport struct {
	NewVersions      []string
	ObsoleteVersions []string
	MissingInHistory []string
	CurrentVersions  []string
	Recommendations  []string
	AutoUpdated      bool
}
