package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/doctrack-api/internal/models"
	"github.com/noah-isme/doctrack-api/pkg/jobs"
)

const activityJobType = "activity-log"

type activityStore interface {
	Insert(ctx context.Context, entry *models.ActivityLog) error
}

type requestMetaKey struct{}

// RequestMeta is the request context copied onto activity rows.
type RequestMeta struct {
	RequestID string
	IPAddress string
}

// ContextWithRequestMeta attaches request metadata for activity logging.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	if ctx == nil {
		return RequestMeta{}
	}
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

// NewActivityEntry builds an activity row stamped with the request metadata in ctx.
func NewActivityEntry(ctx context.Context, actorID, activityType, entityType, entityID, description string, details map[string]interface{}) models.ActivityLog {
	meta := requestMetaFrom(ctx)
	entry := models.ActivityLog{
		ID:           uuid.NewString(),
		ActivityType: activityType,
		EntityType:   entityType,
		Description:  description,
		IPAddress:    meta.IPAddress,
		RequestID:    meta.RequestID,
	}
	if entry.IPAddress == "" {
		entry.IPAddress = "system"
	}
	if strings.TrimSpace(actorID) != "" {
		entry.UserID = &actorID
	}
	if strings.TrimSpace(entityID) != "" {
		entry.EntityID = &entityID
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}
	return entry
}

// ActivityService writes the activity trail off the request path.
type ActivityService struct {
	store  activityStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewActivityService constructs the service and its worker queue.
func NewActivityService(store activityStore, cfg jobs.QueueConfig, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ActivityService{store: store, logger: logger}
	cfg.Logger = logger
	svc.queue = jobs.NewQueue("activity", svc.handle, cfg)
	return svc
}

// Start launches the workers.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains pending entries and stops the workers.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Record queues an entry. A full or stopped queue falls back to a synchronous write.
func (s *ActivityService) Record(ctx context.Context, entry models.ActivityLog) {
	err := s.queue.TryEnqueue(jobs.Job{ID: entry.ID, Type: activityJobType, Payload: entry})
	if err == nil {
		return
	}
	if !errors.Is(err, jobs.ErrQueueFull) {
		s.logger.Debug("activity queue unavailable, writing inline", zap.Error(err))
	}
	if err := s.store.Insert(context.WithoutCancel(ctx), &entry); err != nil {
		s.logger.Warn("failed to persist activity log", zap.String("type", entry.ActivityType), zap.Error(err))
	}
}

func (s *ActivityService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.ActivityLog)
	if !ok {
		s.logger.Error("unexpected activity payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.store.Insert(ctx, &entry); err != nil {
		return fmt.Errorf("insert activity %s: %w", entry.ID, err)
	}
	return nil
}
