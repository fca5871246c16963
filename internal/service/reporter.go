package service

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
	"go.uber.org/zap"

	"tourguide/internal/domain"
)

// FailureType represents the kind of failure reported.
type FailureType string

const (
	FailureScoring  FailureType = "SCORING_FAILED"
	FailureTracking FailureType = "TRACKING_FAILED"
	FailureRewards  FailureType = "REWARDS_FAILED"
)

// FailureReporter is the observability channel for failures that are
// recovered locally and never returned to the caller.
type FailureReporter interface {
	ReportScoringFailure(ctx context.Context, user *domain.User, attraction domain.Attraction, err error)
	ReportTrackingFailure(ctx context.Context, user *domain.User, kind FailureType, err error)
}

// LogReporter reports failures to the structured log.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a new LogReporter.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

// ReportScoringFailure logs a failed scoring call. The reward stays pending.
func (r *LogReporter) ReportScoringFailure(ctx context.Context, user *domain.User, attraction domain.Attraction, err error) {
	r.logger.Warn("scoring failed, reward left pending",
		zap.String("type", string(FailureScoring)),
		zap.String("user", user.Name),
		zap.Stringer("user_id", user.ID),
		zap.String("attraction", attraction.Name),
		zap.Stringer("attraction_id", attraction.ID),
		zap.Error(err),
	)
}

// ReportTrackingFailure logs a failed tracking attempt for one user.
func (r *LogReporter) ReportTrackingFailure(ctx context.Context, user *domain.User, kind FailureType, err error) {
	r.logger.Warn("tracking failed",
		zap.String("type", string(kind)),
		zap.String("user", user.Name),
		zap.Stringer("user_id", user.ID),
		zap.Error(err),
	)
}

// NewRelicReporter records failures as New Relic custom events and
// forwards them to another reporter.
type NewRelicReporter struct {
	app  *newrelic.Application
	next FailureReporter
}

// NewNewRelicReporter creates a NewRelicReporter. A nil app only forwards.
func NewNewRelicReporter(app *newrelic.Application, next FailureReporter) *NewRelicReporter {
	return &NewRelicReporter{app: app, next: next}
}

// ReportScoringFailure records a TourGuideFailure event and forwards.
func (r *NewRelicReporter) ReportScoringFailure(ctx context.Context, user *domain.User, attraction domain.Attraction, err error) {
	if r.app != nil {
		r.app.RecordCustomEvent("TourGuideFailure", map[string]interface{}{
			"type":         string(FailureScoring),
			"userId":       user.ID.String(),
			"attractionId": attraction.ID.String(),
			"attraction":   attraction.Name,
			"error":        err.Error(),
		})
	}
	if r.next != nil {
		r.next.ReportScoringFailure(ctx, user, attraction, err)
	}
}

// ReportTrackingFailure records a TourGuideFailure event and forwards.
func (r *NewRelicReporter) ReportTrackingFailure(ctx context.Context, user *domain.User, kind FailureType, err error) {
	if r.app != nil {
		r.app.RecordCustomEvent("TourGuideFailure", map[string]interface{}{
			"type":   string(kind),
			"userId": user.ID.String(),
			"error":  err.Error(),
		})
	}
	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(err)
	}
	if r.next != nil {
		r.next.ReportTrackingFailure(ctx, user, kind, err)
	}
}

// Ensure reporters implement FailureReporter.
var (
	_ FailureReporter = (*LogReporter)(nil)
	_ FailureReporter = (*NewRelicReporter)(nil)
)
