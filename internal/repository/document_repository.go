package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/doctrack-api/internal/models"
)

// ErrStaleVersion is returned when a conditional document update matched no row
// because another writer bumped the version first.
var ErrStaleVersion = errors.New("document version is stale")

const documentColumns = `id, kind, document_number, subject, sender_name, sender_organization, sender_address,
       reference_number, received_date, priority, category, remarks, current_status, current_section_id,
       current_sub_section_id, current_holder_id, is_parked, park_reason, parked_at, parked_by,
       status_before_park, return_count, received_by, version,
       invoice_number, vendor_name, vendor_gstin, vendor_pan, bill_date, bill_amount, net_payable_amount, payment_status, paid_at,
       letter_type, letter_date, reply_required, reply_deadline, replied_at, reply_reference,
       created_at, updated_at`

// DocumentRepository persists documents. Holder and section columns are written only by MovementRepository.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetByID fetches a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filter, most recently updated first, with the total count.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	args := make([]interface{}, 0, 8)
	conditions := make([]string, 0, 6)

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conditions = append(conditions, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("current_status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.HolderID != "" {
		args = append(args, filter.HolderID)
		conditions = append(conditions, fmt.Sprintf("current_holder_id = $%d", len(args)))
	}
	if filter.SectionID != "" {
		args = append(args, filter.SectionID)
		conditions = append(conditions, fmt.Sprintf("current_section_id = $%d", len(args)))
	}
	if filter.Parked != nil {
		args = append(args, *filter.Parked)
		conditions = append(conditions, fmt.Sprintf("is_parked = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(document_number ILIKE $%d OR subject ILIKE $%d OR sender_name ILIKE $%d)", n, n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	query := fmt.Sprintf("SELECT %s FROM documents%s ORDER BY updated_at DESC LIMIT %d OFFSET %d",
		documentColumns, where, size, (page-1)*size)

	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// SaveState persists lifecycle columns (status, park fields, payment and reply state, remarks)
// guarded by the expected version. On success doc.Version is advanced.
func (r *DocumentRepository) SaveState(ctx context.Context, doc *models.Document, expectedVersion int64) error {
	const query = `UPDATE documents SET
		current_status = :current_status,
		is_parked = :is_parked,
		park_reason = :park_reason,
		parked_at = :parked_at,
		parked_by = :parked_by,
		status_before_park = :status_before_park,
		return_count = :return_count,
		remarks = :remarks,
		payment_status = :payment_status,
		paid_at = :paid_at,
		replied_at = :replied_at,
		reply_reference = :reply_reference,
		updated_at = :updated_at,
		version = version + 1
	WHERE id = :id AND version = :expected_version`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                 doc.ID,
		"expected_version":   expectedVersion,
		"current_status":     doc.Status,
		"is_parked":          doc.IsParked,
		"park_reason":        doc.ParkReason,
		"parked_at":          doc.ParkedAt,
		"parked_by":          doc.ParkedBy,
		"status_before_park": doc.StatusBeforePark,
		"return_count":       doc.ReturnCount,
		"remarks":            doc.Remarks,
		"payment_status":     doc.PaymentStatus,
		"paid_at":            doc.PaidAt,
		"replied_at":         doc.RepliedAt,
		"reply_reference":    doc.ReplyReference,
		"updated_at":         doc.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("save document state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document update rows: %w", err)
	}
	if rows == 0 {
		return ErrStaleVersion
	}
	doc.Version = expectedVersion + 1
	return nil
}

// Delete removes a document; movements cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check document delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
