package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	"meetflow/internal/domains/booking/model"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/logger"
	gRepo "meetflow/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Booking interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	Update(ctx context.Context, mod map[string]any, filter gDto.FilterGroup) (int64, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (int64, error)
	// ExpireHolds moves every awaiting booking whose hold ended at or before now to expired.
	ExpireHolds(ctx context.Context, now time.Time) (int64, error)
	// ListOverlapping returns live bookings of the salesperson intersecting [from, to).
	ListOverlapping(ctx context.Context, salespersonID string, from, to time.Time) ([]model.Booking, error)
}

type Hold interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Hold) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Hold, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.Hold, error)
}

type Meeting interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Meeting) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Meeting, error)
}

type ProviderEvent interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.ProviderEvent) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ProviderEvent, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) (int64, error)
}

type bookingRepository struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func NewBooking(db *postgres.Connection, otel otel.Otel) Booking {
	return &bookingRepository{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

const expireHoldsQuery = `
UPDATE bookings b
SET status = $1, updated_at = $2
FROM holds h
WHERE h.booking_id = b.id
  AND b.status = ANY($3)
  AND h.expires_at <= $2`

func (r *bookingRepository) ExpireHolds(ctx context.Context, now time.Time) (int64, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ExpireHolds")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, expireHoldsQuery)

	res, err := r.db.Write.ExecContext(ctx, expireHoldsQuery, model.StatusExpired, now,
		pq.Array([]string{model.StatusHold, model.StatusPendingVerify}))
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to expire holds: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read expired rows: %w", err)
	}

	return affected, nil
}

const listOverlappingQuery = `
SELECT id, tenant_id, salesperson_id, customer_id, start_at, end_at, status, idempotency_key,
       verify_jti, customer_notify_required, customer_reinvite_required, created_at, updated_at
FROM bookings
WHERE salesperson_id = $1
  AND status = ANY($2)
  AND start_at < $4
  AND end_at > $3
ORDER BY start_at`

func (r *bookingRepository) ListOverlapping(ctx context.Context, salespersonID string, from, to time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListOverlapping")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, listOverlappingQuery)

	var bookings []model.Booking

	err := r.db.Read.SelectContext(ctx, &bookings, listOverlappingQuery, salespersonID, pq.Array(model.LiveStatuses()), from, to)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list overlapping bookings: %w", err)
	}

	return bookings, nil
}

type holdRepository struct {
	gRepo.Repository[model.Hold]
}

func NewHold(db *postgres.Connection, otel otel.Otel) Hold {
	return &holdRepository{
		Repository: gRepo.NewRepository[model.Hold](model.HoldEntityName, model.HoldTableName, model.FieldID, db, otel),
	}
}

type meetingRepository struct {
	gRepo.Repository[model.Meeting]
}

func NewMeeting(db *postgres.Connection, otel otel.Otel) Meeting {
	return &meetingRepository{
		Repository: gRepo.NewRepository[model.Meeting](model.MeetingEntityName, model.MeetingTableName, model.FieldID, db, otel),
	}
}

type providerEventRepository struct {
	gRepo.Repository[model.ProviderEvent]
}

func NewProviderEvent(db *postgres.Connection, otel otel.Otel) ProviderEvent {
	return &providerEventRepository{
		Repository: gRepo.NewRepository[model.ProviderEvent](model.ProviderEventEntity, model.ProviderEventTableName, model.FieldID, db, otel),
	}
}
