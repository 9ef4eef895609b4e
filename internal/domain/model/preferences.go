package model

import "time"

// DisplayPreferences controls which builds the dashboard shows.
type DisplayPreferences struct {
	ShowSuccess     bool          `json:"show_success"`
	ShowFailure     bool          `json:"show_failure"`
	ShowRunning     bool          `json:"show_running"`
	ShowStats       bool          `json:"show_stats"`
	AutoRefresh     bool          `json:"auto_refresh"`
	RefreshInterval time.Duration `json:"refresh_interval"`
}

// DefaultDisplayPreferences shows everything and refreshes every 30 seconds.
func DefaultDisplayPreferences() DisplayPreferences {
	return DisplayPreferences{
		ShowSuccess:     true,
		ShowFailure:     true,
		ShowRunning:     true,
		ShowStats:       true,
		AutoRefresh:     true,
		RefreshInterval: 30 * time.Second,
	}
}

// Allows reports whether a build with the given state passes the filter.
// Running builds are governed by ShowRunning alone; finished builds by
// their status.
func (p DisplayPreferences) Allows(b BuildRecord) bool {
	if b.IsRunning() {
		return p.ShowRunning
	}
	switch {
	case b.Status == BuildStatusSuccess:
		return p.ShowSuccess
	case b.Status.IsFailing():
		return p.ShowFailure
	default:
		return true
	}
}

// StatusCounts tallies builds by state and status.
type StatusCounts struct {
	Total   int
	Running int
	Success int
	Failure int
	Unknown int
}
