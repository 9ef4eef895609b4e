package application

import "time"

// ActivityTier classifies how busy the watched builds are. The status
// watcher waits longer between checks on quieter tiers.
type ActivityTier int

const (
	// TierHot indicates a watched build is running. Checks every base interval.
	TierHot ActivityTier = iota
	// TierActive indicates a status change within the last hour. Checks every 2x base.
	TierActive
	// TierWarm indicates a status change within the last day. Checks every 4x base.
	TierWarm
	// TierStale indicates no status change for a day or more. Checks every 8x base.
	TierStale
)

// maxBackoffInterval caps the backed-off interval. A base interval above the
// cap is used as-is.
const maxBackoffInterval = 30 * time.Minute

// String returns a human-readable name for the activity tier.
func (t ActivityTier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierActive:
		return "active"
	case TierWarm:
		return "warm"
	case TierStale:
		return "stale"
	default:
		return "unknown"
	}
}

// tierInterval returns the wait before the next check for the given tier.
func tierInterval(tier ActivityTier, base time.Duration) time.Duration {
	var d time.Duration
	switch tier {
	case TierHot:
		return base
	case TierActive:
		d = 2 * base
	case TierWarm:
		d = 4 * base
	case TierStale:
		d = 8 * base
	default:
		return base
	}
	if d > maxBackoffInterval {
		d = maxBackoffInterval
	}
	if d < base {
		d = base
	}
	return d
}

// classifyActivity determines the tier from whether any watched build is
// running and when a status last changed. A zero lastChange is TierStale
// unless something is running.
func classifyActivity(running bool, lastChange, now time.Time) ActivityTier {
	if running {
		return TierHot
	}
	if lastChange.IsZero() {
		return TierStale
	}

	elapsed := now.Sub(lastChange)

	switch {
	case elapsed < 1*time.Hour:
		return TierActive
	case elapsed < 24*time.Hour:
		return TierWarm
	default:
		return TierStale
	}
}
