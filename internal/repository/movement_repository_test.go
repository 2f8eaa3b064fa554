package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/doctrack-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestMovementRepositoryReceiveInsertsDocumentAndInitialMovement(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	received := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := &models.Document{
		Kind:           models.DocumentKindLetter,
		DocumentNumber: "LTR-1",
		Subject:        "RTI request",
		SenderName:     "Citizen",
		ReceivedDate:   received,
		Priority:       models.PriorityNormal,
		Status:         models.StatusReceived,
		ReceivedBy:     "recv-1",
	}
	initial := &models.Movement{
		ToUserID:    "recv-1",
		ToSectionID: strPtr("sec-receipt"),
		ForwardedBy: "recv-1",
		ForwardedAt: received,
		Action:      models.ActionReceived,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_movements")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Receive(context.Background(), doc, initial))
	require.NotEmpty(t, doc.ID)
	require.Equal(t, doc.ID, initial.DocumentID)
	require.Equal(t, "recv-1", doc.HolderID())
	require.Equal(t, "sec-receipt", *doc.CurrentSectionID)
	require.True(t, initial.IsCurrent)
	require.Nil(t, initial.FromUserID)
	require.EqualValues(t, 1, doc.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryReceiveRollsBackOnMovementFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_movements")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Receive(context.Background(), &models.Document{}, &models.Movement{ToUserID: "recv-1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryRecordRetiresCurrentAndFreezesDays(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	previous := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	next := previous.Add(3*24*time.Hour + 2*time.Hour)
	movement := &models.Movement{
		FromUserID:  strPtr("user-1"),
		ToUserID:    "user-2",
		ToSectionID: strPtr("sec-2"),
		ForwardedBy: "user-1",
		ForwardedAt: next,
		Action:      models.ActionForwarded,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET current_holder_id = $1")).
		WithArgs("user-2", "sec-2", nil, "FORWARDED", sqlmock.AnyArg(), "doc-1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, forwarded_at FROM document_movements")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "forwarded_at"}).AddRow("mov-1", previous))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE document_movements SET is_current = FALSE, time_held_days = $1")).
		WithArgs(int64(3), "mov-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_movements")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Record(context.Background(), RecordParams{
		DocumentID:      "doc-1",
		ExpectedVersion: 3,
		Status:          models.StatusForwarded,
		Movement:        movement,
	})
	require.NoError(t, err)
	require.True(t, movement.IsCurrent)
	require.Equal(t, "doc-1", movement.DocumentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryRecordStaleVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewMovementRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET current_holder_id")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Record(context.Background(), RecordParams{
		DocumentID:      "doc-1",
		ExpectedVersion: 3,
		Status:          models.StatusForwarded,
		Movement:        &models.Movement{ToUserID: "user-2"},
	})
	require.ErrorIs(t, err, ErrStaleVersion)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepositoryListByDocumentNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Now()
	repo := NewMovementRepository(db)
	columns := []string{"id", "document_id", "from_user_id", "from_user_name", "from_section_id", "from_sub_section_id",
		"to_user_id", "to_user_name", "to_section_id", "to_section_name", "to_sub_section_id", "forwarded_by",
		"forwarded_at", "action_taken", "comments", "is_current", "time_held_days", "created_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY forwarded_at DESC, created_at DESC")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("mov-2", "doc-1", "user-1", "A", "sec-1", nil, "user-2", "B", "sec-2", "Accounts", nil, "user-1", now, "FORWARDED", nil, true, nil, now).
			AddRow("mov-1", "doc-1", nil, nil, nil, nil, "user-1", "A", "sec-1", "Receipt", nil, "user-1", now.Add(-48*time.Hour), "RECEIVED", nil, false, 2, now))

	movements, err := repo.ListByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.True(t, movements[0].IsCurrent)
	require.Nil(t, movements[1].FromUserID)
	require.Equal(t, 2, *movements[1].TimeHeldDays)
	require.NoError(t, mock.ExpectationsWereMet())
}
