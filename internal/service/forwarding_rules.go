package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/doctrack-api/internal/models"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

// ForwardCheck is the state a forwarding decision is evaluated against.
type ForwardCheck struct {
	Actor    *models.User
	Document *models.Document
	// Current is the document's current movement, nil only for legacy rows.
	Current *models.Movement
	// ForwardAt is the requested forward date; zero means Now.
	ForwardAt time.Time
	Now       time.Time
	Location  *time.Location
}

// CheckForward returns nil when the actor may forward the document, otherwise a
// typed error whose reason names the violated precondition.
//
// Status and date rules bind every actor. The superuser grant is the single early
// exit after them; payment, reply and role rules only bind everyone else.
func CheckForward(c ForwardCheck) *appErrors.Error {
	doc := c.Document
	if doc.Status.Terminal() {
		return appErrors.WithReason(appErrors.ErrDocumentLocked, string(models.ReasonStatusClosed))
	}

	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	forwardAt := c.ForwardAt
	if forwardAt.IsZero() {
		forwardAt = c.Now
	}
	if dayOf(forwardAt, loc).After(dayOf(c.Now, loc)) {
		return appErrors.WithReason(appErrors.ErrInvalidForwardDate, string(models.ReasonFutureDate))
	}
	if c.Current != nil && dayOf(forwardAt, loc).Before(dayOf(c.Current.ForwardedAt, loc)) {
		return appErrors.WithReason(appErrors.ErrInvalidForwardDate, string(models.ReasonBeforeLastMovement))
	}

	if doc.IsParked {
		return appErrors.WithReason(appErrors.ErrForwardNotPermitted, string(models.ReasonDocumentParked))
	}

	if IsSuperuser(c.Actor) {
		return nil
	}

	if doc.Paid() {
		return appErrors.WithReason(appErrors.ErrDocumentLocked, string(models.ReasonPaymentPaid))
	}
	if letterReplied(doc) {
		return appErrors.WithReason(appErrors.ErrDocumentLocked, string(models.ReasonLetterReplied))
	}

	if c.Actor != nil && (c.Actor.ID == doc.HolderID() || HasRole(c.Actor, models.RoleReceiveSection) || IsSectionHead(c.Actor)) {
		return nil
	}
	return appErrors.WithReason(appErrors.ErrForwardNotPermitted, string(models.ReasonRoleMismatch))
}

// Eligibility is the boolean form of CheckForward.
func Eligibility(c ForwardCheck) models.ForwardDecision {
	if err := CheckForward(c); err != nil {
		return models.ForwardDecision{Allowed: false, Reason: models.ForwardReason(err.Reason)}
	}
	return models.ForwardDecision{Allowed: true}
}

// Recipients builds the sorted set of users the actor may forward to. The result
// never contains inactive users, superusers, the current holder or the actor.
func Recipients(actor *models.User, holderID string, directory []models.User) []models.Recipient {
	if actor == nil {
		return []models.Recipient{}
	}

	everyone := IsSuperuser(actor) || HasRole(actor, models.RoleReceiveSection)
	head := IsSectionHead(actor)
	member := HasRole(actor, models.RoleSectionMember)
	ownSection := actor.Section()

	seen := make(map[string]struct{}, len(directory))
	recipients := make([]models.Recipient, 0, len(directory))
	for i := range directory {
		candidate := &directory[i]
		if !candidate.Active || IsSuperuser(candidate) {
			continue
		}
		if candidate.ID == holderID || candidate.ID == actor.ID {
			continue
		}
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		if !reachable(candidate, everyone, head, member, ownSection) {
			continue
		}
		seen[candidate.ID] = struct{}{}
		recipients = append(recipients, toRecipient(candidate))
	}

	sort.SliceStable(recipients, func(i, j int) bool {
		a, b := recipients[i], recipients[j]
		if a.SectionName != b.SectionName {
			return a.SectionName < b.SectionName
		}
		if !strings.EqualFold(a.FullName, b.FullName) {
			return strings.ToLower(a.FullName) < strings.ToLower(b.FullName)
		}
		return a.UserID < b.UserID
	})
	return recipients
}

// IsAllowedRecipient reports whether userID is in the recipient set.
func IsAllowedRecipient(recipients []models.Recipient, userID string) (models.Recipient, bool) {
	for _, r := range recipients {
		if r.UserID == userID {
			return r, true
		}
	}
	return models.Recipient{}, false
}

func reachable(candidate *models.User, everyone, head, member bool, ownSection string) bool {
	if everyone {
		return true
	}
	sameSection := ownSection != "" && candidate.Section() == ownSection
	candidateHead := IsSectionHead(candidate)
	if head {
		switch {
		case sameSection:
			return true
		case candidateHead:
			return true
		case HasRole(candidate, models.RoleReceiveSection):
			return true
		}
	}
	if member && sameSection && candidateHead {
		return true
	}
	return false
}

func toRecipient(u *models.User) models.Recipient {
	recipient := models.Recipient{
		UserID:        u.ID,
		FullName:      u.FullName,
		Designation:   u.Designation,
		SectionID:     u.Section(),
		SubSectionID:  u.SubSectionID,
		IsSectionHead: IsSectionHead(u),
	}
	if u.SectionName != nil {
		recipient.SectionName = *u.SectionName
	}
	return recipient
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
