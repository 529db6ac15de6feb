package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"meetflow/infras/graph"
	graphMocks "meetflow/infras/graph/mocks"
	otelMocks "meetflow/infras/otel/mocks"
	pgMocks "meetflow/infras/postgres/mocks"
	auditMocks "meetflow/internal/domains/audit/mocks"
	auditModel "meetflow/internal/domains/audit/model"
	bookingMocks "meetflow/internal/domains/booking/mocks"
	bookingModel "meetflow/internal/domains/booking/model"
	compensationMocks "meetflow/internal/domains/compensation/mocks"
	compensationModel "meetflow/internal/domains/compensation/model"
	"meetflow/internal/domains/reconciliation/service"
	webhookModel "meetflow/internal/domains/webhook/model"
)

type fixture struct {
	bookings      *bookingMocks.MockBooking
	events        *bookingMocks.MockProviderEvent
	graph         *graphMocks.MockClient
	compensations *compensationMocks.MockCompensationService
	recorder      *auditMocks.MockRecorder
	transactor    *pgMocks.MockTransactor
	svc           service.Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		bookings:      bookingMocks.NewMockBooking(ctrl),
		events:        bookingMocks.NewMockProviderEvent(ctrl),
		graph:         graphMocks.NewMockClient(ctrl),
		compensations: compensationMocks.NewMockCompensationService(ctrl),
		recorder:      auditMocks.NewMockRecorder(ctrl),
		transactor:    pgMocks.NewMockTransactor(ctrl),
	}
	f.svc = service.New(f.bookings, f.events, f.graph, f.compensations, f.recorder, f.transactor, otelMocks.NewOtel())

	return f
}

func (f *fixture) runTx() {
	f.transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) })
}

func (f *fixture) tracked(status string) bookingModel.Booking {
	start := time.Date(2030, 1, 15, 3, 0, 0, 0, time.UTC)
	booking := bookingModel.Booking{ID: "b-1", TenantID: "t-1", Status: status, StartAt: start, EndAt: start.Add(time.Hour)}

	f.events.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(bookingModel.ProviderEvent{ID: "pe-1", BookingID: "b-1", EventID: "evt-1", OrganizerUserID: "u-1"}, nil)
	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)

	return booking
}

func job(changeType string) webhookModel.Job {
	return webhookModel.Job{ID: "job-1", TenantID: "t-1", ChangeType: changeType, ResourceID: "evt-1"}
}

func TestReconciler_Deleted(t *testing.T) {
	t.Run("cancels confirmed booking and flags the customer", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)

		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, bookingModel.StatusCanceled, mod[bookingModel.FieldStatus])
				assert.Equal(t, true, mod[bookingModel.FieldCustomerNotifyRequired])

				return 1, nil
			})
		f.recorder.EXPECT().Track(gomock.Any(), "t-1", "b-1", auditModel.TrackingEventDeletedBySales, map[string]any{
			"source":      "sales_manual",
			"resource_id": "evt-1",
		})
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionBookingCanceledByWebhook, entry.Action)
			assert.Equal(t, "webhook-worker", entry.ActorID)
			assert.Equal(t, "job-1", entry.Meta["job_id"])
		})

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeDeleted)))
	})

	t.Run("booking already canceled is left alone", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)
		booking.Status = bookingModel.StatusCanceled

		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeDeleted)))
	})

	t.Run("untracked event is a no-op", func(t *testing.T) {
		f := newFixture(t)

		f.events.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingModel.ProviderEvent{}, nil)

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeDeleted)))
	})

	t.Run("store failure is returned for retry", func(t *testing.T) {
		f := newFixture(t)
		f.tracked(bookingModel.StatusConfirmed)

		f.transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		assert.Error(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeDeleted)))
	})
}

func TestReconciler_Updated(t *testing.T) {
	newStart := time.Date(2030, 1, 15, 5, 0, 0, 0, time.UTC)

	t.Run("moves booking and flags reinvite", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").
			Return(graph.EventDetails{EventID: "evt-1", Start: newStart, End: newStart.Add(time.Hour), ETag: "etag-2"}, nil)
		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, newStart, mod[bookingModel.FieldStartAt])
				assert.Equal(t, true, mod[bookingModel.FieldCustomerReinviteRequired])
				assert.NotContains(t, mod, bookingModel.FieldStatus)

				return 1, nil
			})
		f.events.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, "etag-2", mod[bookingModel.FieldETag])

				return 1, nil
			})
		f.recorder.EXPECT().Track(gomock.Any(), "t-1", "b-1", auditModel.TrackingEventMovedBySales, gomock.Any())
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionBookingMovedByWebhook, entry.Action)
		})

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})

	t.Run("move onto an occupied slot keeps the window and raises a compensation job", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").
			Return(graph.EventDetails{EventID: "evt-1", Start: newStart, End: newStart.Add(time.Hour)}, nil)
		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(int64(0), &pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"})
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, true, mod[bookingModel.FieldCustomerNotifyRequired])
				assert.NotContains(t, mod, bookingModel.FieldStartAt)

				return 1, nil
			})
		f.compensations.EXPECT().Record(gomock.Any(), "t-1", "b-1", compensationModel.ReasonProviderMoveConflict, gomock.Any()).Return(nil)
		f.recorder.EXPECT().Track(gomock.Any(), "t-1", "b-1", auditModel.TrackingEventMoveConflict, gomock.Any())
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionBookingMoveConflict, entry.Action)
		})

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})

	t.Run("compensation store failure on a conflicting move is retried", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").
			Return(graph.EventDetails{EventID: "evt-1", Start: newStart, End: newStart.Add(time.Hour)}, nil)
		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(int64(0), &pq.Error{Code: "23P01"})
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.compensations.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		assert.Error(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})

	t.Run("unchanged window records nothing", func(t *testing.T) {
		f := newFixture(t)
		booking := f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").
			Return(graph.EventDetails{EventID: "evt-1", Start: booking.StartAt, End: booking.EndAt}, nil)
		f.runTx()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(booking, nil)

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})

	t.Run("event gone on the provider is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").Return(graph.EventDetails{}, graph.ErrEventNotFound)

		require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})

	t.Run("provider failure is returned for retry", func(t *testing.T) {
		f := newFixture(t)
		f.tracked(bookingModel.StatusConfirmed)

		f.graph.EXPECT().GetEvent(gomock.Any(), "u-1", "evt-1").Return(graph.EventDetails{}, errors.New("graph down"))

		assert.Error(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeUpdated)))
	})
}

func TestReconciler_CreatedIsIgnored(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Reconcile(context.Background(), job(webhookModel.ChangeCreated)))
}
