package model

import "time"

// Selection is a build configuration the user chose to monitor.
type Selection struct {
	BuildTypeID string
	ProjectName string
	BuildName   string
	Selected    bool
	SelectedAt  time.Time
	UpdatedAt   time.Time
}

// SelectionMeta is the display metadata stored with a selection.
type SelectionMeta struct {
	ProjectName string
	BuildName   string
}
