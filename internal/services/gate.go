package services

import (
	"fmt"
	"time"

	"github.com/AgusMolinaCode/TomanPortfolio_Api/internal/models"
	"github.com/dustin/go-humanize"
)

// DefaultRefreshCooldown is the minimum time between two non-forced refreshes.
const DefaultRefreshCooldown = 10 * time.Minute

// GateDecision is the answer to a refresh request.
type GateDecision struct {
	Allowed       bool
	NextAllowedAt time.Time
	Message       string
}

// RefreshGate enforces the cooldown between refreshes.
type RefreshGate struct {
	MinInterval time.Duration
}

func NewRefreshGate(minInterval time.Duration) RefreshGate {
	if minInterval <= 0 {
		minInterval = DefaultRefreshCooldown
	}
	return RefreshGate{MinInterval: minInterval}
}

// ShouldRefresh allows forced requests, a missing or default previous
// snapshot, and any request made at least MinInterval after prev was fetched.
func (g RefreshGate) ShouldRefresh(prev *models.PriceSnapshot, now time.Time, forced bool) GateDecision {
	if forced || prev == nil || prev.IsDefault {
		return GateDecision{Allowed: true}
	}

	next := prev.FetchedAt.Add(g.MinInterval)
	if !now.Before(next) {
		return GateDecision{Allowed: true}
	}

	return GateDecision{
		Allowed:       false,
		NextAllowedAt: next,
		Message: fmt.Sprintf("Prices were updated %s. Next refresh is available %s.",
			humanize.RelTime(prev.FetchedAt, now, "ago", "from now"),
			humanize.RelTime(next, now, "ago", "from now")),
	}
}
