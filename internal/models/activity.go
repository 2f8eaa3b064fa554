package models

import "time"

// Activity types written to the activity log.
const (
	ActivityDocumentReceived = "DOCUMENT_RECEIVED"
	ActivityDocumentForward  = "DOCUMENT_FORWARDED"
	ActivityDocumentPark     = "DOCUMENT_PARKED"
	ActivityDocumentUnpark   = "DOCUMENT_UNPARKED"
	ActivityDocumentClose    = "DOCUMENT_CLOSED"
	ActivityDocumentArchive  = "DOCUMENT_ARCHIVED"
	ActivityBillPaid         = "BILL_PAID"
	ActivityLetterReplied    = "LETTER_REPLIED"
	ActivityDocumentDelete   = "DOCUMENT_DELETED"
	ActivityForwardDenied    = "FORWARD_DENIED"
)

// ActivityLog is one row of the activity trail.
type ActivityLog struct {
	ID           string    `db:"id" json:"id"`
	UserID       *string   `db:"user_id" json:"userId,omitempty"`
	ActivityType string    `db:"activity_type" json:"activityType"`
	EntityType   string    `db:"entity_type" json:"entityType"`
	EntityID     *string   `db:"entity_id" json:"entityId,omitempty"`
	Description  string    `db:"description" json:"description"`
	Details      []byte    `db:"details" json:"details,omitempty"`
	IPAddress    string    `db:"ip_address" json:"ipAddress"`
	RequestID    string    `db:"request_id" json:"requestId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
