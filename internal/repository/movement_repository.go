package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/doctrack-api/internal/models"
	"github.com/noah-isme/doctrack-api/pkg/database"
)

const movementColumns = `id, document_id, from_user_id, from_user_name, from_section_id, from_sub_section_id,
       to_user_id, to_user_name, to_section_id, to_section_name, to_sub_section_id, forwarded_by, forwarded_at,
       action_taken, comments, is_current, time_held_days, created_at`

const insertMovement = `INSERT INTO document_movements
	(id, document_id, from_user_id, from_user_name, from_section_id, from_sub_section_id, to_user_id, to_user_name,
	 to_section_id, to_section_name, to_sub_section_id, forwarded_by, forwarded_at, action_taken, comments,
	 is_current, time_held_days, created_at)
	VALUES (:id, :document_id, :from_user_id, :from_user_name, :from_section_id, :from_sub_section_id, :to_user_id,
	 :to_user_name, :to_section_id, :to_section_name, :to_sub_section_id, :forwarded_by, :forwarded_at,
	 :action_taken, :comments, :is_current, :time_held_days, :created_at)`

// MovementRepository records document hand-overs. It is the only writer of the
// current holder and current section columns on documents.
type MovementRepository struct {
	db *sqlx.DB
}

// NewMovementRepository constructs the repository.
func NewMovementRepository(db *sqlx.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Receive inserts a new document and its initial current movement atomically.
func (r *MovementRepository) Receive(ctx context.Context, doc *models.Document, initial *models.Movement) error {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = doc.CreatedAt
	doc.Version = 1
	doc.CurrentHolderID = &initial.ToUserID
	doc.CurrentSectionID = initial.ToSectionID
	doc.CurrentSubSectionID = initial.ToSubSectionID

	prepareMovement(initial, doc.ID, now)

	const insertDocument = `INSERT INTO documents
	(id, kind, document_number, subject, sender_name, sender_organization, sender_address, reference_number,
	 received_date, priority, category, remarks, current_status, current_section_id, current_sub_section_id,
	 current_holder_id, is_parked, return_count, received_by, version,
	 invoice_number, vendor_name, vendor_gstin, vendor_pan, bill_date, bill_amount, net_payable_amount, payment_status,
	 letter_type, letter_date, reply_required, reply_deadline, created_at, updated_at)
	VALUES (:id, :kind, :document_number, :subject, :sender_name, :sender_organization, :sender_address,
	 :reference_number, :received_date, :priority, :category, :remarks, :current_status, :current_section_id,
	 :current_sub_section_id, :current_holder_id, :is_parked, :return_count, :received_by, :version,
	 :invoice_number, :vendor_name, :vendor_gstin, :vendor_pan, :bill_date, :bill_amount, :net_payable_amount, :payment_status,
	 :letter_type, :letter_date, :reply_required, :reply_deadline, :created_at, :updated_at)`

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertDocument, doc); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if _, err := tx.NamedExecContext(ctx, insertMovement, initial); err != nil {
			return fmt.Errorf("insert initial movement: %w", err)
		}
		return nil
	})
}

// RecordParams describes a hand-over to persist.
type RecordParams struct {
	DocumentID      string
	ExpectedVersion int64
	Status          models.DocumentStatus
	Movement        *models.Movement
}

// Record retires the current movement, freezing its held days, inserts the new
// current movement and moves the document to the new holder. Everything happens
// in one transaction; ErrStaleVersion is returned when the document version moved.
func (r *MovementRepository) Record(ctx context.Context, params RecordParams) error {
	if params.Movement == nil {
		return fmt.Errorf("record movement: movement is required")
	}
	movement := params.Movement
	now := time.Now().UTC()
	prepareMovement(movement, params.DocumentID, now)

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const updateDocument = `UPDATE documents SET current_holder_id = $1, current_section_id = $2,
		current_sub_section_id = $3, current_status = $4, updated_at = $5, version = version + 1
		WHERE id = $6 AND version = $7`
		result, err := tx.ExecContext(ctx, updateDocument,
			movement.ToUserID,
			movement.ToSectionID,
			movement.ToSubSectionID,
			params.Status,
			now,
			params.DocumentID,
			params.ExpectedVersion,
		)
		if err != nil {
			return fmt.Errorf("update document holder: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check document holder rows: %w", err)
		}
		if rows == 0 {
			return ErrStaleVersion
		}

		var current struct {
			ID          string    `db:"id"`
			ForwardedAt time.Time `db:"forwarded_at"`
		}
		const lockCurrent = `SELECT id, forwarded_at FROM document_movements
		WHERE document_id = $1 AND is_current = TRUE FOR UPDATE`
		err = tx.GetContext(ctx, &current, lockCurrent, params.DocumentID)
		switch {
		case err == nil:
			held := models.HeldDays(current.ForwardedAt, movement.ForwardedAt)
			const retire = `UPDATE document_movements SET is_current = FALSE, time_held_days = $1 WHERE id = $2`
			if _, err := tx.ExecContext(ctx, retire, held, current.ID); err != nil {
				return fmt.Errorf("retire current movement: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("lock current movement: %w", err)
		}

		if _, err := tx.NamedExecContext(ctx, insertMovement, movement); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		return nil
	})
}

// ListByDocument returns the movement trail, most recent first.
func (r *MovementRepository) ListByDocument(ctx context.Context, documentID string) ([]models.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM document_movements
	WHERE document_id = $1 ORDER BY forwarded_at DESC, created_at DESC`
	var movements []models.Movement
	if err := r.db.SelectContext(ctx, &movements, query, documentID); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// GetCurrent returns the single current movement of a document.
func (r *MovementRepository) GetCurrent(ctx context.Context, documentID string) (*models.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM document_movements
	WHERE document_id = $1 AND is_current = TRUE`
	var movement models.Movement
	if err := r.db.GetContext(ctx, &movement, query, documentID); err != nil {
		return nil, err
	}
	return &movement, nil
}

func prepareMovement(m *models.Movement, documentID string, now time.Time) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.DocumentID = documentID
	m.IsCurrent = true
	m.TimeHeldDays = nil
	if m.ForwardedAt.IsZero() {
		m.ForwardedAt = now
	}
	m.CreatedAt = now
}
