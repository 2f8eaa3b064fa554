package models

import "time"

// MovementAction records what the sender did with the document.
type MovementAction string

const (
	// ActionReceived only appears on the implicit first movement.
	ActionReceived  MovementAction = "RECEIVED"
	ActionForwarded MovementAction = "FORWARDED"
	ActionReturned  MovementAction = "RETURNED"
	ActionApproved  MovementAction = "APPROVED"
	ActionRejected  MovementAction = "REJECTED"
	ActionReviewed  MovementAction = "REVIEWED"
)

// Movement is an immutable hand-over record once superseded.
type Movement struct {
	ID               string         `db:"id" json:"id"`
	DocumentID       string         `db:"document_id" json:"documentId"`
	FromUserID       *string        `db:"from_user_id" json:"fromUserId,omitempty"`
	FromUserName     *string        `db:"from_user_name" json:"fromUserName,omitempty"`
	FromSectionID    *string        `db:"from_section_id" json:"fromSectionId,omitempty"`
	FromSubSectionID *string        `db:"from_sub_section_id" json:"fromSubSectionId,omitempty"`
	ToUserID         string         `db:"to_user_id" json:"toUserId"`
	ToUserName       *string        `db:"to_user_name" json:"toUserName,omitempty"`
	ToSectionID      *string        `db:"to_section_id" json:"toSectionId,omitempty"`
	ToSectionName    *string        `db:"to_section_name" json:"toSectionName,omitempty"`
	ToSubSectionID   *string        `db:"to_sub_section_id" json:"toSubSectionId,omitempty"`
	ForwardedBy      string         `db:"forwarded_by" json:"forwardedBy"`
	ForwardedAt      time.Time      `db:"forwarded_at" json:"forwardedAt"`
	Action           MovementAction `db:"action_taken" json:"action"`
	Comments         *string        `db:"comments" json:"comments,omitempty"`
	IsCurrent        bool           `db:"is_current" json:"isCurrent"`
	TimeHeldDays     *int           `db:"time_held_days" json:"timeHeldDays,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
}

// UrgencyLevel buckets how long a document has been held.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "LOW"
	UrgencyMedium UrgencyLevel = "MEDIUM"
	UrgencyHigh   UrgencyLevel = "HIGH"
)

// TimeHeld describes how long the current holder has had a document.
type TimeHeld struct {
	DocumentID string       `json:"documentId"`
	HolderID   string       `json:"holderId"`
	Since      time.Time    `json:"since"`
	Days       int          `json:"days"`
	Urgency    UrgencyLevel `json:"urgency"`
}

// HeldDays is the number of whole days between from and to, never negative.
func HeldDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
