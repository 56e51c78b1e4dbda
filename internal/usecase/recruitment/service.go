// Package recruitment holds the use cases behind the HTTP API and the CLI.
// Domain functions stay pure; this layer loads state, calls them and then
// executes the audit, notification and event intents they return.
package recruitment

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"talent-track/internal/domain/analytics"
	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"
	"talent-track/internal/domain/pipeline"
	"talent-track/internal/domain/selection"
	"talent-track/internal/logger"
	"talent-track/internal/metrics"
	"talent-track/internal/notification"
	"talent-track/internal/store"
	"talent-track/internal/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrValidationFailed = pipeline.ErrValidationFailed
	ErrInternal         = errors.New("internal error")
)

type Notifier interface {
	Enqueue(msg notification.Message) bool
}

type EventPublisher interface {
	Publish(evt ws.Event)
}

type Deps struct {
	Store     store.Store
	Cache     SelectionCache
	Notifier  Notifier
	Events    EventPublisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
	Threshold int
	Analytics analytics.Options
	CacheTTL  time.Duration
}

type Service struct {
	store     store.Store
	cache     SelectionCache
	notifier  Notifier
	events    EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	analytics analytics.Options
	cacheTTL  time.Duration

	threshold atomic.Int64
}

func NewService(d Deps) *Service {
	s := &Service{
		store:     d.Store,
		cache:     d.Cache,
		notifier:  d.Notifier,
		events:    d.Events,
		metrics:   d.Metrics,
		logger:    d.Logger,
		now:       d.Now,
		analytics: d.Analytics,
		cacheTTL:  d.CacheTTL,
	}
	s.logger = logger.Named(d.Logger, "recruitment")
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if !selection.ThresholdInRange(d.Threshold) {
		d.Threshold = selection.DefaultThreshold
	}
	s.threshold.Store(int64(d.Threshold))
	return s
}

// Threshold is the auto-selection threshold used when a request names none.
func (s *Service) Threshold() int {
	return int(s.threshold.Load())
}

// SetThreshold replaces the default threshold; out-of-range values are rejected.
func (s *Service) SetThreshold(t int) error {
	if !selection.ThresholdInRange(t) {
		return fmt.Errorf("%w: threshold %d not in [%d,%d]", ErrInvalidInput, t, selection.MinThreshold, selection.MaxThreshold)
	}
	old := s.threshold.Swap(int64(t))
	if int(old) != t {
		s.logger.Info("selection threshold changed", zap.Int64("from", old), zap.Int("to", t))
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// applyEffects executes the intents of a domain operation. Failures are
// logged: the state change they follow has already been stored.
func (s *Service) applyEffects(ctx context.Context, app application.Application, j job.Job, eff pipeline.Effects) {
	entry := application.AuditEntry{
		ID:        uuid.New(),
		Action:    eff.Audit.Action,
		Details:   eff.Audit.Details,
		Timestamp: eff.Audit.Timestamp,
		Actor:     eff.Audit.Actor,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.String("application_id", app.ID.String()),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
	s.notify(eff.Notification, j)
}

func (s *Service) audit(ctx context.Context, action, actor string, at time.Time, details map[string]any) {
	if actor == "" {
		actor = pipeline.SystemActor
	}
	entry := application.AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Details:   details,
		Timestamp: at,
		Actor:     actor,
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.logger.Error("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) notify(intent *pipeline.NotificationIntent, j job.Job) {
	if intent == nil || s.notifier == nil {
		return
	}
	data := make(map[string]string, len(intent.Data)+1)
	for k, v := range intent.Data {
		data[k] = v
	}
	if _, ok := data["jobTitle"]; !ok && j.Title != "" {
		data["jobTitle"] = j.Title
	}
	s.notifier.Enqueue(notification.Message{
		To:           intent.To,
		TemplateType: string(intent.TemplateType),
		Data:         data,
	})
}

func (s *Service) publish(evt ws.Event) {
	if s.events == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = s.now()
	}
	s.events.Publish(evt)
}

// storeErr maps persistence errors onto the use case sentinels.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
