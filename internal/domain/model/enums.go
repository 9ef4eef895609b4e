package model

import "strings"

// BuildStatus is the outcome of a build run as reported by the CI server.
type BuildStatus string

const (
	BuildStatusSuccess BuildStatus = "SUCCESS"
	BuildStatusFailure BuildStatus = "FAILURE"
	BuildStatusError   BuildStatus = "ERROR"
	BuildStatusUnknown BuildStatus = "UNKNOWN"
)

// ParseBuildStatus normalizes an upstream status string. Unrecognized
// values map to BuildStatusUnknown.
func ParseBuildStatus(s string) BuildStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return BuildStatusSuccess
	case "FAILURE":
		return BuildStatusFailure
	case "ERROR":
		return BuildStatusError
	default:
		return BuildStatusUnknown
	}
}

// IsFailing reports whether the status counts as a failure on the dashboard.
func (s BuildStatus) IsFailing() bool {
	return s == BuildStatusFailure || s == BuildStatusError
}

// BuildState is the lifecycle state of a build run.
type BuildState string

const (
	BuildStateRunning  BuildState = "running"
	BuildStateFinished BuildState = "finished"
	BuildStateQueued   BuildState = "queued"
)

// ParseBuildState normalizes an upstream state string. Unrecognized values
// map to BuildStateFinished.
func ParseBuildState(s string) BuildState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return BuildStateRunning
	case "queued":
		return BuildStateQueued
	default:
		return BuildStateFinished
	}
}

// OverallStatus is the rolled-up state of a group of builds.
type OverallStatus string

const (
	OverallStatusPassing OverallStatus = "passing"
	OverallStatusFailing OverallStatus = "failing"
	OverallStatusRunning OverallStatus = "running"
	OverallStatusUnknown OverallStatus = "unknown"
)

// Freshness describes how a cached read was served.
type Freshness string

const (
	// FreshnessFresh means the data was fetched within the TTL.
	FreshnessFresh Freshness = "fresh"
	// FreshnessStale means a refresh failed and expired data was served.
	FreshnessStale Freshness = "stale"
	// FreshnessUnavailable means no data could be served at all.
	FreshnessUnavailable Freshness = "unavailable"
)
