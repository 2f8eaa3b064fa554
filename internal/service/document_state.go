package service

import (
	"strings"
	"time"

	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

// StatusForAction maps a movement action onto the resulting document status.
func StatusForAction(action models.MovementAction) models.DocumentStatus {
	switch action {
	case models.ActionApproved:
		return models.StatusApproved
	case models.ActionRejected:
		return models.StatusRejected
	case models.ActionReviewed:
		return models.StatusInProgress
	case models.ActionReceived:
		return models.StatusReceived
	default:
		return models.StatusForwarded
	}
}

func lockedByStatus(doc *models.Document) *appErrors.Error {
	if doc.Status.Terminal() {
		return appErrors.WithReason(appErrors.ErrDocumentLocked, string(models.ReasonStatusClosed))
	}
	return nil
}

func applyPark(doc *models.Document, actorID, reason string, now time.Time) error {
	if err := lockedByStatus(doc); err != nil {
		return err
	}
	if doc.IsParked {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, "already-parked")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return appErrors.Clone(appErrors.ErrValidation, "park reason is required")
	}
	prior := string(doc.Status)
	doc.StatusBeforePark = &prior
	doc.Status = models.StatusParked
	doc.IsParked = true
	doc.ParkReason = &reason
	doc.ParkedAt = &now
	doc.ParkedBy = &actorID
	doc.UpdatedAt = now
	return nil
}

func applyUnpark(doc *models.Document, now time.Time) error {
	if err := lockedByStatus(doc); err != nil {
		return err
	}
	if !doc.IsParked {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, "not-parked")
	}
	restored := models.StatusInProgress
	if doc.StatusBeforePark != nil && *doc.StatusBeforePark != "" {
		restored = models.DocumentStatus(*doc.StatusBeforePark)
	}
	doc.Status = restored
	doc.IsParked = false
	doc.ParkReason = nil
	doc.ParkedAt = nil
	doc.ParkedBy = nil
	doc.StatusBeforePark = nil
	doc.ReturnCount++
	doc.UpdatedAt = now
	return nil
}

func applyClose(doc *models.Document, remarks string, now time.Time) error {
	if doc.Status.Terminal() {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, string(models.ReasonStatusClosed))
	}
	if doc.IsParked {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, string(models.ReasonDocumentParked))
	}
	if remarks = strings.TrimSpace(remarks); remarks != "" {
		doc.Remarks = &remarks
	}
	doc.Status = models.StatusClosed
	doc.UpdatedAt = now
	return nil
}

func applyArchive(doc *models.Document, now time.Time) error {
	if doc.Status != models.StatusClosed {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, "not-closed")
	}
	doc.Status = models.StatusArchived
	doc.UpdatedAt = now
	return nil
}

func applyPaid(doc *models.Document, paidAt, now time.Time) error {
	if doc.Kind != models.DocumentKindBill {
		return appErrors.Clone(appErrors.ErrValidation, "only bills can be marked as paid")
	}
	if err := lockedByStatus(doc); err != nil {
		return err
	}
	if doc.Paid() {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, string(models.ReasonPaymentPaid))
	}
	paid := models.PaymentPaid
	doc.PaymentStatus = &paid
	doc.PaidAt = &paidAt
	doc.UpdatedAt = now
	return nil
}

func applyReplied(doc *models.Document, reference string, repliedAt, now time.Time) error {
	if doc.Kind != models.DocumentKindLetter {
		return appErrors.Clone(appErrors.ErrValidation, "only letters can be marked as replied")
	}
	if err := lockedByStatus(doc); err != nil {
		return err
	}
	if letterReplied(doc) {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, string(models.ReasonLetterReplied))
	}
	if doc.IsParked {
		return appErrors.WithReason(appErrors.ErrInvalidTransition, string(models.ReasonDocumentParked))
	}
	reference = strings.TrimSpace(reference)
	doc.ReplyReference = &reference
	doc.RepliedAt = &repliedAt
	doc.Status = models.StatusReplied
	doc.UpdatedAt = now
	return nil
}

func letterReplied(doc *models.Document) bool {
	return doc.Kind == models.DocumentKindLetter && (doc.RepliedAt != nil || doc.Status == models.StatusReplied)
}
