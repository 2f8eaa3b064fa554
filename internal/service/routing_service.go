package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/doctrack-api/internal/dto"
	"github.com/noah-isme/doctrack-api/internal/models"
	"github.com/noah-isme/doctrack-api/internal/repository"
	"github.com/noah-isme/doctrack-api/pkg/database"
	appErrors "github.com/noah-isme/doctrack-api/pkg/errors"
)

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListActiveDirectory(ctx context.Context) ([]models.User, error)
	ActiveIDs(ctx context.Context, ids []string) ([]string, error)
	ListSections(ctx context.Context) ([]models.Section, error)
}

type documentStore interface {
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	SaveState(ctx context.Context, doc *models.Document, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

type movementStore interface {
	Receive(ctx context.Context, doc *models.Document, initial *models.Movement) error
	Record(ctx context.Context, params repository.RecordParams) error
	ListByDocument(ctx context.Context, documentID string) ([]models.Movement, error)
	GetCurrent(ctx context.Context, documentID string) (*models.Movement, error)
}

type activitySink interface {
	Record(ctx context.Context, entry models.ActivityLog)
}

type directorySource interface {
	ActiveDirectory(ctx context.Context, load func(context.Context) ([]models.User, error)) ([]models.User, error)
	Enabled() bool
}

// RoutingSlipRenderer turns a movement trail into a printable slip.
type RoutingSlipRenderer interface {
	RoutingSlip(doc *models.Document, movements []models.Movement, heldDays []int, generatedAt time.Time) ([]byte, error)
}

// RoutingService owns the document lifecycle: receipt, forwarding, parking,
// closure and the time-held view of the movement trail.
type RoutingService struct {
	users     userDirectory
	documents documentStore
	movements movementStore
	validator *validator.Validate
	logger    *zap.Logger

	activity activitySink
	cache    directorySource
	metrics  *MetricsService
	slips    RoutingSlipRenderer
	location *time.Location
	now      func() time.Time
}

// RoutingServiceOption configures optional collaborators.
type RoutingServiceOption func(*RoutingService)

// WithActivityLog routes lifecycle events to the activity trail.
func WithActivityLog(sink activitySink) RoutingServiceOption {
	return func(s *RoutingService) { s.activity = sink }
}

// WithDirectoryCache serves recipient listings from a cached directory.
func WithDirectoryCache(cache directorySource) RoutingServiceOption {
	return func(s *RoutingService) { s.cache = cache }
}

// WithRoutingMetrics records movement, denial and conflict counters.
func WithRoutingMetrics(metrics *MetricsService) RoutingServiceOption {
	return func(s *RoutingService) { s.metrics = metrics }
}

// WithRoutingSlipRenderer enables routing slip downloads.
func WithRoutingSlipRenderer(renderer RoutingSlipRenderer) RoutingServiceOption {
	return func(s *RoutingService) { s.slips = renderer }
}

// WithLocation sets the timezone calendar dates are interpreted in.
func WithLocation(loc *time.Location) RoutingServiceOption {
	return func(s *RoutingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RoutingServiceOption {
	return func(s *RoutingService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRoutingService wires the routing engine.
func NewRoutingService(users userDirectory, documents documentStore, movements movementStore, validate *validator.Validate, logger *zap.Logger, opts ...RoutingServiceOption) *RoutingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RoutingService{
		users:     users,
		documents: documents,
		movements: movements,
		validator: validate,
		logger:    logger,
		location:  time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Receive registers an incoming document held by the receiving user.
func (s *RoutingService) Receive(ctx context.Context, actorID string, req dto.ReceiveDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !PermissionsOf(actor).CanReceive {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user cannot receive documents")
	}

	now := s.now()
	receivedAt, err := s.resolveDate(req.ReceivedDate, now)
	if err != nil {
		return nil, err
	}
	if dayOf(receivedAt, s.location).After(dayOf(now, s.location)) {
		return nil, appErrors.WithReason(appErrors.Clone(appErrors.ErrValidation, "received date cannot be in the future"), string(models.ReasonFutureDate))
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	doc := &models.Document{
		Kind:               req.Kind,
		DocumentNumber:     strings.TrimSpace(req.DocumentNumber),
		Subject:            strings.TrimSpace(req.Subject),
		SenderName:         strings.TrimSpace(req.SenderName),
		SenderOrganization: optionalString(req.SenderOrganization),
		SenderAddress:      optionalString(req.SenderAddress),
		ReferenceNumber:    optionalString(req.ReferenceNumber),
		ReceivedDate:       receivedAt,
		Priority:           priority,
		Category:           optionalString(req.Category),
		Remarks:            optionalString(req.Remarks),
		Status:             models.StatusReceived,
		ReceivedBy:         actor.ID,
		CreatedAt:          now,
	}
	if err := s.applyKindDetails(doc, req); err != nil {
		return nil, err
	}

	initial := &models.Movement{
		ToUserID:       actor.ID,
		ToUserName:     &actor.FullName,
		ToSectionID:    actor.SectionID,
		ToSectionName:  actor.SectionName,
		ToSubSectionID: actor.SubSectionID,
		ForwardedBy:    actor.ID,
		ForwardedAt:    receivedAt,
		Action:         models.ActionReceived,
	}
	if err := s.movements.Receive(ctx, doc, initial); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("document number %s already exists", doc.DocumentNumber))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to receive document")
	}
	s.metrics.RecordMovement(string(models.ActionReceived))
	s.emitActivity(ctx, actor.ID, doc.ID, models.ActivityDocumentReceived,
		fmt.Sprintf("%s %s received", doc.Kind, doc.DocumentNumber),
		map[string]interface{}{"documentNumber": doc.DocumentNumber, "kind": doc.Kind})
	return doc, nil
}

func (s *RoutingService) applyKindDetails(doc *models.Document, req dto.ReceiveDocumentRequest) error {
	switch req.Kind {
	case models.DocumentKindBill:
		if req.Bill == nil {
			return appErrors.Clone(appErrors.ErrValidation, "bill details are required")
		}
		pending := models.PaymentPending
		amount := req.Bill.BillAmount
		net := amount
		if req.Bill.NetPayableAmount != nil {
			net = *req.Bill.NetPayableAmount
		}
		doc.InvoiceNumber = optionalString(req.Bill.InvoiceNumber)
		doc.VendorName = optionalString(req.Bill.VendorName)
		doc.VendorGSTIN = optionalString(strings.ToUpper(req.Bill.VendorGSTIN))
		doc.VendorPAN = optionalString(strings.ToUpper(req.Bill.VendorPAN))
		doc.BillAmount = &amount
		doc.NetPayableAmount = &net
		doc.PaymentStatus = &pending
		if req.Bill.BillDate != "" {
			billDate, err := s.parseDate(req.Bill.BillDate)
			if err != nil {
				return err
			}
			doc.BillDate = &billDate
		}
	case models.DocumentKindLetter:
		letterType := models.LetterIncoming
		if req.Letter != nil {
			if req.Letter.LetterType != "" {
				letterType = req.Letter.LetterType
			}
			doc.ReplyRequired = req.Letter.ReplyRequired
			if req.Letter.LetterDate != "" {
				letterDate, err := s.parseDate(req.Letter.LetterDate)
				if err != nil {
					return err
				}
				doc.LetterDate = &letterDate
			}
			if req.Letter.ReplyDeadline != "" {
				deadline, err := s.parseDate(req.Letter.ReplyDeadline)
				if err != nil {
					return err
				}
				doc.ReplyDeadline = &deadline
			}
		}
		doc.LetterType = &letterType
	}
	return nil
}

// CanForward evaluates eligibility for a forward dated now. It has no side effects.
func (s *RoutingService) CanForward(ctx context.Context, actorID, documentID string) (models.ForwardDecision, error) {
	actor, doc, current, err := s.loadForwardState(ctx, actorID, documentID)
	if err != nil {
		return models.ForwardDecision{}, err
	}
	return Eligibility(ForwardCheck{
		Actor:    actor,
		Document: doc,
		Current:  current,
		Now:      s.now(),
		Location: s.location,
	}), nil
}

// ListForwardableRecipients returns the valid targets for the actor, empty when
// the actor may not forward the document at all.
func (s *RoutingService) ListForwardableRecipients(ctx context.Context, actorID, documentID string) ([]models.Recipient, error) {
	actor, doc, current, err := s.loadForwardState(ctx, actorID, documentID)
	if err != nil {
		return nil, err
	}
	if denial := CheckForward(ForwardCheck{Actor: actor, Document: doc, Current: current, Now: s.now(), Location: s.location}); denial != nil {
		return []models.Recipient{}, nil
	}

	directory, err := s.activeDirectory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user directory")
	}
	return Recipients(actor, doc.HolderID(), directory), nil
}

// activeDirectory serves the directory from cache when configured. Cached
// entries may predate a deactivation, so their ids are re-checked against storage.
func (s *RoutingService) activeDirectory(ctx context.Context) ([]models.User, error) {
	if s.cache == nil || !s.cache.Enabled() {
		return s.users.ListActiveDirectory(ctx)
	}
	directory, err := s.cache.ActiveDirectory(ctx, s.users.ListActiveDirectory)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(directory))
	for _, user := range directory {
		ids = append(ids, user.ID)
	}
	active, err := s.users.ActiveIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	still := make(map[string]struct{}, len(active))
	for _, id := range active {
		still[id] = struct{}{}
	}
	filtered := make([]models.User, 0, len(directory))
	for _, user := range directory {
		if _, ok := still[user.ID]; ok {
			filtered = append(filtered, user)
		}
	}
	return filtered, nil
}

// Forward hands the document to another user. Eligibility and the target are
// re-validated against freshly loaded state; a lost race yields CONCURRENT_MODIFICATION.
func (s *RoutingService) Forward(ctx context.Context, actorID, documentID string, req dto.ForwardRequest) (*models.Movement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	actor, doc, current, err := s.loadForwardState(ctx, actorID, documentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	forwardAt := now
	if req.ForwardDate != "" {
		if forwardAt, err = s.resolveDate(req.ForwardDate, now); err != nil {
			return nil, err
		}
	}

	if denial := CheckForward(ForwardCheck{
		Actor:     actor,
		Document:  doc,
		Current:   current,
		ForwardAt: forwardAt,
		Now:       now,
		Location:  s.location,
	}); denial != nil {
		s.deny(ctx, actor.ID, doc.ID, denial)
		return nil, denial
	}
	// Same-day back-dating must not precede the movement it supersedes.
	if current != nil && forwardAt.Before(current.ForwardedAt) {
		forwardAt = current.ForwardedAt
	}

	directory, err := s.users.ListActiveDirectory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user directory")
	}
	target, ok := IsAllowedRecipient(Recipients(actor, doc.HolderID(), directory), req.ToUserID)
	if !ok {
		denial := appErrors.WithReason(appErrors.ErrForwardNotPermitted, string(models.ReasonRecipientNotAllowed))
		s.deny(ctx, actor.ID, doc.ID, denial)
		return nil, denial
	}
	if req.ToSectionID != "" && req.ToSectionID != target.SectionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recipient does not belong to the requested section")
	}

	action := req.Action
	if action == "" {
		action = models.ActionForwarded
	}
	movement := &models.Movement{
		FromUserID:       &actor.ID,
		FromUserName:     &actor.FullName,
		FromSectionID:    actor.SectionID,
		FromSubSectionID: actor.SubSectionID,
		ToUserID:         target.UserID,
		ToUserName:       &target.FullName,
		ToSectionID:      optionalString(target.SectionID),
		ToSectionName:    optionalString(target.SectionName),
		ToSubSectionID:   target.SubSectionID,
		ForwardedBy:      actor.ID,
		ForwardedAt:      forwardAt,
		Action:           action,
		Comments:         optionalString(req.Comments),
	}
	status := StatusForAction(action)
	err = s.movements.Record(ctx, repository.RecordParams{
		DocumentID:      doc.ID,
		ExpectedVersion: doc.Version,
		Status:          status,
		Movement:        movement,
	})
	if err != nil {
		return nil, s.storageError(err, "forward", "failed to record movement")
	}

	s.metrics.RecordMovement(string(action))
	s.logger.Info("document forwarded",
		zap.String("document_id", doc.ID),
		zap.String("from", actor.ID),
		zap.String("to", target.UserID),
		zap.String("action", string(action)),
	)
	s.emitActivity(ctx, actor.ID, doc.ID, models.ActivityDocumentForward,
		fmt.Sprintf("%s forwarded to %s", doc.DocumentNumber, target.FullName),
		map[string]interface{}{"to": target.UserID, "action": action, "status": status})
	return movement, nil
}

// Park suspends a document. No movement is created, so time held keeps running.
func (s *RoutingService) Park(ctx context.Context, actorID, documentID string, req dto.ParkRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:      "park",
		activity:  models.ActivityDocumentPark,
		authorize: canHandle,
		apply: func(doc *models.Document, actor *models.User, now time.Time) error {
			return applyPark(doc, actor.ID, req.Reason, now)
		},
		details: map[string]interface{}{"reason": req.Reason},
	})
}

// Unpark resumes a parked document, restoring its prior status.
func (s *RoutingService) Unpark(ctx context.Context, actorID, documentID string) (*models.Document, error) {
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:      "unpark",
		activity:  models.ActivityDocumentUnpark,
		authorize: canHandle,
		apply: func(doc *models.Document, _ *models.User, now time.Time) error {
			return applyUnpark(doc, now)
		},
	})
}

// Close ends the document's active life.
func (s *RoutingService) Close(ctx context.Context, actorID, documentID string, req dto.CloseRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:      "close",
		activity:  models.ActivityDocumentClose,
		authorize: canHandle,
		apply: func(doc *models.Document, _ *models.User, now time.Time) error {
			return applyClose(doc, req.Remarks, now)
		},
	})
}

// Archive moves a closed document to the archive.
func (s *RoutingService) Archive(ctx context.Context, actorID, documentID string) (*models.Document, error) {
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:     "archive",
		activity: models.ActivityDocumentArchive,
		authorize: func(actor *models.User, _ *models.Document) bool {
			return IsSuperuser(actor) || HasRole(actor, models.RoleReceiveSection)
		},
		apply: func(doc *models.Document, _ *models.User, now time.Time) error {
			return applyArchive(doc, now)
		},
	})
}

// MarkPaid settles a bill, which locks it against further forwarding.
func (s *RoutingService) MarkPaid(ctx context.Context, actorID, documentID string) (*models.Document, error) {
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:      "mark-paid",
		activity:  models.ActivityBillPaid,
		authorize: canHandle,
		apply: func(doc *models.Document, _ *models.User, now time.Time) error {
			return applyPaid(doc, now, now)
		},
	})
}

// MarkReplied records the reply to a letter, which locks it against further forwarding.
func (s *RoutingService) MarkReplied(ctx context.Context, actorID, documentID string, req dto.MarkRepliedRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	now := s.now()
	repliedAt := now
	if req.RepliedDate != "" {
		var err error
		if repliedAt, err = s.resolveDate(req.RepliedDate, now); err != nil {
			return nil, err
		}
		if dayOf(repliedAt, s.location).After(dayOf(now, s.location)) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "replied date cannot be in the future")
		}
	}
	return s.transition(ctx, actorID, documentID, lifecycleStep{
		name:      "mark-replied",
		activity:  models.ActivityLetterReplied,
		authorize: canHandle,
		apply: func(doc *models.Document, _ *models.User, now time.Time) error {
			return applyReplied(doc, req.ReplyReference, repliedAt, now)
		},
		details: map[string]interface{}{"replyReference": req.ReplyReference},
	})
}

// Delete removes a document and its movements. Superuser only.
func (s *RoutingService) Delete(ctx context.Context, actorID, documentID string) error {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}
	if !IsSuperuser(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only superusers can delete documents")
	}
	if err := s.documents.Delete(ctx, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	s.emitActivity(ctx, actor.ID, documentID, models.ActivityDocumentDelete, "document deleted", nil)
	return nil
}

// ListDocuments returns a page of documents.
func (s *RoutingService) ListDocuments(ctx context.Context, query dto.DocumentQuery) ([]models.Document, *models.Pagination, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	docs, total, err := s.documents.List(ctx, models.DocumentFilter{
		Kind:      query.Kind,
		Status:    query.Status,
		HolderID:  query.HolderID,
		SectionID: query.SectionID,
		Parked:    query.Parked,
		Search:    query.Search,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetDetail returns a document with its trail and current time held.
func (s *RoutingService) GetDetail(ctx context.Context, documentID string) (*dto.DocumentDetail, error) {
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	movements, err := s.movements.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movements")
	}
	detail := &dto.DocumentDetail{Document: doc, Movements: movements}
	for i := range movements {
		if movements[i].IsCurrent {
			detail.TimeHeld = TimeHeldAt(&movements[i], s.now())
			break
		}
	}
	return detail, nil
}

// MovementHistory returns the trail, most recent first.
func (s *RoutingService) MovementHistory(ctx context.Context, documentID string) ([]models.Movement, error) {
	if _, err := s.loadDocument(ctx, documentID); err != nil {
		return nil, err
	}
	movements, err := s.movements.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movements")
	}
	if movements == nil {
		movements = []models.Movement{}
	}
	return movements, nil
}

// DaysHeld measures how long the current holder has had the document.
func (s *RoutingService) DaysHeld(ctx context.Context, documentID string) (*models.TimeHeld, error) {
	current, err := s.movements.GetCurrent(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current movement")
	}
	return TimeHeldAt(current, s.now()), nil
}

// ListSections returns the section catalogue for forwarding pickers.
func (s *RoutingService) ListSections(ctx context.Context) ([]models.Section, error) {
	sections, err := s.users.ListSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	if sections == nil {
		sections = []models.Section{}
	}
	return sections, nil
}

// RoutingSlip renders the movement trail as a PDF and returns it with a file name.
func (s *RoutingService) RoutingSlip(ctx context.Context, documentID string) ([]byte, string, error) {
	if s.slips == nil {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "routing slip rendering is not configured")
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, "", err
	}
	movements, err := s.movements.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movements")
	}
	now := s.now()
	held := make([]int, len(movements))
	for i, m := range movements {
		held[i] = MovementHeldDays(m, now)
	}
	body, err := s.slips.RoutingSlip(doc, movements, held, now)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render routing slip")
	}
	return body, fmt.Sprintf("routing-slip-%s.pdf", sanitizeFileName(doc.DocumentNumber)), nil
}

type lifecycleStep struct {
	name      string
	activity  string
	authorize func(actor *models.User, doc *models.Document) bool
	apply     func(doc *models.Document, actor *models.User, now time.Time) error
	details   map[string]interface{}
}

func (s *RoutingService) transition(ctx context.Context, actorID, documentID string, step lifecycleStep) (*models.Document, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !step.authorize(actor, doc) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("user cannot %s this document", step.name))
	}
	expected := doc.Version
	previous := doc.Status
	if err := step.apply(doc, actor, s.now()); err != nil {
		return nil, err
	}
	if err := s.documents.SaveState(ctx, doc, expected); err != nil {
		return nil, s.storageError(err, step.name, "failed to update document")
	}

	details := map[string]interface{}{"from": previous, "to": doc.Status}
	for k, v := range step.details {
		details[k] = v
	}
	s.emitActivity(ctx, actor.ID, doc.ID, step.activity,
		fmt.Sprintf("%s %s: %s -> %s", doc.DocumentNumber, step.name, previous, doc.Status), details)
	return doc, nil
}

// canHandle covers the holder, heads of the holding section and superusers.
func canHandle(actor *models.User, doc *models.Document) bool {
	if IsSuperuser(actor) || actor.ID == doc.HolderID() {
		return true
	}
	return IsSectionHead(actor) && doc.CurrentSectionID != nil && actor.Section() == *doc.CurrentSectionID
}

func (s *RoutingService) loadForwardState(ctx context.Context, actorID, documentID string) (*models.User, *models.Document, *models.Movement, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := s.loadDocument(ctx, documentID)
	if err != nil {
		return nil, nil, nil, err
	}
	current, err := s.movements.GetCurrent(ctx, documentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load current movement")
		}
		current = nil
	}
	return actor, doc, current, nil
}

// loadActor resolves the acting user from storage on every call; token claims
// never carry roles.
func (s *RoutingService) loadActor(ctx context.Context, actorID string) (*models.User, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "user account is inactive")
	}
	return user, nil
}

func (s *RoutingService) loadDocument(ctx context.Context, documentID string) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *RoutingService) storageError(err error, operation, message string) error {
	if errors.Is(err, repository.ErrStaleVersion) {
		s.metrics.RecordConflict(operation)
		return appErrors.WithReason(appErrors.ErrConcurrentModification, "stale-version")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *RoutingService) deny(ctx context.Context, actorID, documentID string, denial *appErrors.Error) {
	s.metrics.RecordForwardDenied(denial.Reason)
	s.logger.Info("forward denied",
		zap.String("document_id", documentID),
		zap.String("actor_id", actorID),
		zap.String("reason", denial.Reason),
	)
	s.emitActivity(ctx, actorID, documentID, models.ActivityForwardDenied, denial.Error(),
		map[string]interface{}{"code": denial.Code, "reason": denial.Reason})
}

func (s *RoutingService) emitActivity(ctx context.Context, actorID, documentID, activityType, description string, details map[string]interface{}) {
	if s.activity == nil {
		return
	}
	entry := NewActivityEntry(ctx, actorID, activityType, "document", documentID, description, details)
	s.activity.Record(ctx, entry)
}

// resolveDate parses a calendar date in the service timezone and stamps it with
// the current time of day.
func (s *RoutingService) resolveDate(value string, now time.Time) (time.Time, error) {
	day, err := s.parseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	clock := now.In(s.location)
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), s.location), nil
}

func (s *RoutingService) parseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dto.DateLayout, strings.TrimSpace(value), s.location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value))
	}
	return day, nil
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

func sanitizeFileName(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
