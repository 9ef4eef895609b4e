package model

import "time"

// BuildStatusEvent records a status transition observed between two polls.
type BuildStatusEvent struct {
	BuildTypeID string      `json:"build_type_id"`
	ProjectName string      `json:"project_name"`
	BuildName   string      `json:"build_name"`
	Previous    BuildStatus `json:"previous_status"`
	Current     BuildStatus `json:"current_status"`
	State       BuildState  `json:"state"`
	WebURL      string      `json:"web_url"`
	ObservedAt  time.Time   `json:"observed_at"`
}
