package application

import (
	"github.com/ericfisherdev/tcpanel/internal/domain/model"
)

// ProjectSummary rolls up the builds under one top-level project.
type ProjectSummary struct {
	Name    string
	Overall model.OverallStatus
	Counts  model.StatusCounts
}

// SummarizeForest returns one summary per top-level project, in name order.
func SummarizeForest(forest model.Forest) []ProjectSummary {
	summaries := make([]ProjectSummary, 0, len(forest))
	for _, name := range forest.Names() {
		var records []model.BuildRecord
		forest[name].Walk(func(b *model.TreeBuild) {
			records = append(records, b.BuildRecord)
		})
		summaries = append(summaries, ProjectSummary{
			Name:    name,
			Overall: computeOverallStatus(records),
			Counts:  CountStatuses(records),
		})
	}
	return summaries
}

// computeOverallStatus aggregates build records into a single OverallStatus.
// Priority: failing > running > passing > unknown.
func computeOverallStatus(records []model.BuildRecord) model.OverallStatus {
	if len(records) == 0 {
		return model.OverallStatusUnknown
	}

	var hasFailing, hasRunning, hasPassing bool

	for _, rec := range records {
		if rec.IsRunning() {
			hasRunning = true
			continue
		}
		switch {
		case rec.Status.IsFailing():
			hasFailing = true
		case rec.Status == model.BuildStatusSuccess:
			hasPassing = true
		}
	}

	switch {
	case hasFailing:
		return model.OverallStatusFailing
	case hasRunning:
		return model.OverallStatusRunning
	case hasPassing:
		return model.OverallStatusPassing
	default:
		return model.OverallStatusUnknown
	}
}
