package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"meetflow/infras/otel"
	"meetflow/internal/domains/audit/model"
	"meetflow/internal/domains/audit/repository"
	"meetflow/shared/constant"
	"meetflow/shared/logger"
	"meetflow/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

const writeTimeout = 5 * time.Second

// Recorder appends audit and tracking rows. Writes never fail the caller:
// they run detached from the caller's cancellation and errors are only logged.
type Recorder interface {
	Audit(ctx context.Context, entry model.Entry)
	Track(ctx context.Context, tenantID, bookingID, eventType string, meta map[string]any)
}

type serviceImpl struct {
	audits   repository.AuditLog
	tracking repository.TrackingEvent
	otel     otel.Otel
}

func New(audits repository.AuditLog, tracking repository.TrackingEvent, otel otel.Otel) Recorder {
	return &serviceImpl{
		audits:   audits,
		tracking: tracking,
		otel:     otel,
	}
}

func (s *serviceImpl) Audit(ctx context.Context, entry model.Entry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".audit.Audit")
	defer scope.End()

	err := s.audits.Insert(ctx, model.AuditLog{
		ID:         uuid.NewString(),
		TenantID:   entry.TenantID,
		ActorType:  entry.ActorType,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Meta:       encodeMeta(entry.Meta),
		CreatedAt:  timezone.Now().UTC(),
	})

	scope.TraceIfError(err)
	logger.BestEffort(err, "audit", map[string]string{
		"audit_action": entry.Action,
		"entity_id":    entry.EntityID,
	})
}

func (s *serviceImpl) Track(ctx context.Context, tenantID, bookingID, eventType string, meta map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".audit.Track")
	defer scope.End()

	err := s.tracking.Insert(ctx, model.TrackingEvent{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		BookingID:  bookingID,
		Type:       eventType,
		Meta:       encodeMeta(meta),
		OccurredAt: timezone.Now().UTC(),
	})

	scope.TraceIfError(err)
	logger.BestEffort(err, "track", map[string]string{
		"tracking_type": eventType,
		"booking_id":    bookingID,
	})
}

func encodeMeta(meta map[string]any) types.JSONText {
	if len(meta) == 0 {
		return types.JSONText("{}")
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		logger.BestEffort(err, "encode audit meta", nil)

		return types.JSONText("{}")
	}

	return types.JSONText(raw)
}
