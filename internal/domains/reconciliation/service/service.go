package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"meetflow/infras/graph"
	"meetflow/infras/otel"
	"meetflow/infras/postgres"
	auditModel "meetflow/internal/domains/audit/model"
	auditService "meetflow/internal/domains/audit/service"
	bookingModel "meetflow/internal/domains/booking/model"
	bookingRepo "meetflow/internal/domains/booking/repository"
	compensationModel "meetflow/internal/domains/compensation/model"
	compensationService "meetflow/internal/domains/compensation/service"
	webhookModel "meetflow/internal/domains/webhook/model"
	"meetflow/shared"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	actorWebhookWorker = "webhook-worker"
	sourceSalesManual  = "sales_manual"
)

// Reconciler applies a provider change notification onto the booking it concerns.
type Reconciler interface {
	Reconcile(ctx context.Context, job webhookModel.Job) error
}

type serviceImpl struct {
	bookings      bookingRepo.Booking
	events        bookingRepo.ProviderEvent
	graph         graph.Client
	compensations compensationService.Compensation
	recorder      auditService.Recorder
	transactor    postgres.Transactor
	otel          otel.Otel
}

func New(
	bookings bookingRepo.Booking,
	events bookingRepo.ProviderEvent,
	graph graph.Client,
	compensations compensationService.Compensation,
	recorder auditService.Recorder,
	transactor postgres.Transactor,
	otel otel.Otel,
) Reconciler {
	return &serviceImpl{
		bookings:      bookings,
		events:        events,
		graph:         graph,
		compensations: compensations,
		recorder:      recorder,
		transactor:    transactor,
		otel:          otel,
	}
}

func (s *serviceImpl) Reconcile(ctx context.Context, job webhookModel.Job) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reconciliation.Reconcile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if job.ChangeType != webhookModel.ChangeDeleted && job.ChangeType != webhookModel.ChangeUpdated {
		return nil
	}

	event, err := s.events.Get(ctx, shared.FilterByID(job.ResourceID, bookingModel.FieldEventID, bookingModel.ProviderEventTableName))
	if err != nil {
		log.Error().Err(err).Str("resource_id", job.ResourceID).Msg("failed to get provider event")

		return fmt.Errorf("failed to get provider event: %w", err)
	}

	if event.ID == "" {
		log.Debug().Str("resource_id", job.ResourceID).Msg("notification for untracked event")

		return nil
	}

	booking, err := s.bookings.Get(ctx, shared.FilterByTenant(job.TenantID, bookingModel.FieldTenantID, event.BookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", event.BookingID).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == "" {
		return nil
	}

	if job.ChangeType == webhookModel.ChangeDeleted {
		return s.cancel(ctx, job, booking)
	}

	return s.move(ctx, job, booking, event)
}

// cancel applies an event deleted on the provider side. Only a confirmed booking
// moves; a customer cancel deletes the event itself and must not raise the notify flag.
func (s *serviceImpl) cancel(ctx context.Context, job webhookModel.Job, booking bookingModel.Booking) error {
	applied := false

	err := s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		latest, err := s.bookings.GetTx(ctx, tx, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to re-read booking: %w", err)
		}

		if latest.Status != bookingModel.StatusConfirmed {
			return nil
		}

		_, err = s.bookings.UpdateTx(ctx, tx, map[string]any{
			bookingModel.FieldStatus:                 bookingModel.StatusCanceled,
			bookingModel.FieldCustomerNotifyRequired: true,
			bookingModel.FieldUpdatedAt:              timezone.Now().UTC(),
		}, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		applied = true

		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to apply deleted event")

		return err //nolint:wrapcheck
	}

	if !applied {
		return nil
	}

	s.recorder.Track(ctx, booking.TenantID, booking.ID, auditModel.TrackingEventDeletedBySales, map[string]any{
		"source":      sourceSalesManual,
		"resource_id": job.ResourceID,
	})
	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   booking.TenantID,
		ActorType:  constant.ActorTypeSystem,
		ActorID:    actorWebhookWorker,
		Action:     auditModel.ActionBookingCanceledByWebhook,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       map[string]any{"job_id": job.ID, "source": sourceSalesManual},
	})

	log.Info().Str("booking_id", booking.ID).Str("job_id", job.ID).Msg("booking canceled by calendar change")

	return nil
}

// move applies an event rescheduled on the provider side.
func (s *serviceImpl) move(ctx context.Context, job webhookModel.Job, booking bookingModel.Booking, event bookingModel.ProviderEvent) error {
	details, err := s.graph.GetEvent(ctx, event.OrganizerUserID, event.EventID)
	if err != nil {
		if errors.Is(err, graph.ErrEventNotFound) {
			// the deletion notification that follows cancels the booking
			log.Info().Str("event_id", event.EventID).Msg("updated event no longer exists")

			return nil
		}

		log.Error().Err(err).Str("event_id", event.EventID).Msg("failed to get calendar event")

		return fmt.Errorf("failed to get calendar event: %w", err)
	}

	start, end := details.Start.UTC(), details.End.UTC()
	applied := false

	err = s.transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
		latest, err := s.bookings.GetTx(ctx, tx, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to re-read booking: %w", err)
		}

		if latest.Status != bookingModel.StatusConfirmed {
			return nil
		}

		if latest.StartAt.Equal(start) && latest.EndAt.Equal(end) {
			return nil
		}

		now := timezone.Now().UTC()

		_, err = s.bookings.UpdateTx(ctx, tx, map[string]any{
			bookingModel.FieldStartAt:                  start,
			bookingModel.FieldEndAt:                    end,
			bookingModel.FieldCustomerReinviteRequired: true,
			bookingModel.FieldUpdatedAt:                now,
		}, shared.FilterByID(booking.ID, bookingModel.FieldID, bookingModel.TableName))
		if err != nil {
			return fmt.Errorf("failed to move booking: %w", err)
		}

		if details.ETag != "" {
			_, err = s.events.UpdateTx(ctx, tx, map[string]any{
				bookingModel.FieldETag:      details.ETag,
				bookingModel.FieldUpdatedAt: now,
			}, shared.FilterByID(event.ID, bookingModel.FieldID, bookingModel.ProviderEventTableName))
			if err != nil {
				return fmt.Errorf("failed to update provider event: %w", err)
			}
		}

		applied = true

		return nil
	})
	if err != nil {
		if gRepo.IsConstraintViolation(err) {
			return s.moveConflict(ctx, job, booking, start, end, err)
		}

		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to apply updated event")

		return err //nolint:wrapcheck
	}

	if !applied {
		return nil
	}

	s.recorder.Track(ctx, booking.TenantID, booking.ID, auditModel.TrackingEventMovedBySales, map[string]any{
		"source":      sourceSalesManual,
		"resource_id": job.ResourceID,
	})
	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   booking.TenantID,
		ActorType:  constant.ActorTypeSystem,
		ActorID:    actorWebhookWorker,
		Action:     auditModel.ActionBookingMovedByWebhook,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       map[string]any{"job_id": job.ID},
	})

	log.Info().Str("booking_id", booking.ID).Str("job_id", job.ID).Msg("booking moved by calendar change")

	return nil
}

// moveConflict handles an event moved onto a window another live booking holds. The
// overlap rule rejects that window on every attempt, so the booking keeps its old
// time, the customer is flagged and an operator gets a compensation job.
func (s *serviceImpl) moveConflict(ctx context.Context, job webhookModel.Job, booking bookingModel.Booking, start, end time.Time, cause error) error {
	log.Warn().Str("booking_id", booking.ID).Time("start_at", start).Msg("calendar move overlaps another booking")

	_, err := s.bookings.Update(ctx, map[string]any{
		bookingModel.FieldCustomerNotifyRequired: true,
		bookingModel.FieldUpdatedAt:              timezone.Now().UTC(),
	}, statusFilter(booking.ID, bookingModel.StatusConfirmed))
	if err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to flag conflicting booking")

		return fmt.Errorf("failed to flag conflicting booking: %w", err)
	}

	if err = s.compensations.Record(ctx, booking.TenantID, booking.ID, compensationModel.ReasonProviderMoveConflict, cause); err != nil {
		return err //nolint:wrapcheck
	}

	meta := map[string]any{
		"source":       sourceSalesManual,
		"resource_id":  job.ResourceID,
		"requested_at": start.Format(constant.DateFormat),
		"requested_to": end.Format(constant.DateFormat),
	}

	s.recorder.Track(ctx, booking.TenantID, booking.ID, auditModel.TrackingEventMoveConflict, meta)
	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   booking.TenantID,
		ActorType:  constant.ActorTypeSystem,
		ActorID:    actorWebhookWorker,
		Action:     auditModel.ActionBookingMoveConflict,
		EntityType: auditModel.EntityBooking,
		EntityID:   booking.ID,
		Meta:       map[string]any{"job_id": job.ID, "requested_at": meta["requested_at"]},
	})

	return nil
}

func statusFilter(bookingID, status string) gDto.FilterGroup {
	return shared.FilterByFields(bookingModel.TableName, []string{bookingModel.FieldID, bookingModel.FieldStatus}, bookingID, status)
}
