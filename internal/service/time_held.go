package service

import (
	"time"

	"github.com/noah-isme/doctrack-api/internal/models"
)

const (
	lowUrgencyMaxDays    = 3
	mediumUrgencyMaxDays = 7
)

// UrgencyFor buckets a held-days count.
func UrgencyFor(days int) models.UrgencyLevel {
	switch {
	case days <= lowUrgencyMaxDays:
		return models.UrgencyLow
	case days <= mediumUrgencyMaxDays:
		return models.UrgencyMedium
	default:
		return models.UrgencyHigh
	}
}

// TimeHeldAt measures the current movement from its forwarded date. The document's
// received date is never used.
func TimeHeldAt(current *models.Movement, now time.Time) *models.TimeHeld {
	if current == nil {
		return nil
	}
	days := models.HeldDays(current.ForwardedAt, now)
	return &models.TimeHeld{
		DocumentID: current.DocumentID,
		HolderID:   current.ToUserID,
		Since:      current.ForwardedAt,
		Days:       days,
		Urgency:    UrgencyFor(days),
	}
}

// MovementHeldDays is the frozen value for superseded movements and the live
// value for the current one.
func MovementHeldDays(m models.Movement, now time.Time) int {
	if !m.IsCurrent && m.TimeHeldDays != nil {
		return *m.TimeHeldDays
	}
	return models.HeldDays(m.ForwardedAt, now)
}
