package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/doctrack-api/internal/models"
)

// ActivityRepository appends rows to the activity trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert stores a single activity row.
func (r *ActivityRepository) Insert(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.Details) == 0 {
		entry.Details = []byte("{}")
	}
	const query = `INSERT INTO activity_logs
	(id, user_id, activity_type, entity_type, entity_id, description, details, ip_address, request_id, created_at)
	VALUES (:id, :user_id, :activity_type, :entity_type, :entity_id, :description, :details, :ip_address, :request_id, :created_at)`
	// details travels as text so postgres parses it as jsonb rather than bytea.
	if _, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":            entry.ID,
		"user_id":       entry.UserID,
		"activity_type": entry.ActivityType,
		"entity_type":   entry.EntityType,
		"entity_id":     entry.EntityID,
		"description":   entry.Description,
		"details":       string(entry.Details),
		"ip_address":    entry.IPAddress,
		"request_id":    entry.RequestID,
		"created_at":    entry.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
