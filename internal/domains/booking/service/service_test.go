package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"meetflow/config"
	"meetflow/infras/graph"
	graphMocks "meetflow/infras/graph/mocks"
	"meetflow/infras/jwt"
	jwtMocks "meetflow/infras/jwt/mocks"
	"meetflow/infras/metrics"
	otelMocks "meetflow/infras/otel/mocks"
	pgMocks "meetflow/infras/postgres/mocks"
	"meetflow/infras/zoom"
	zoomMocks "meetflow/infras/zoom/mocks"
	auditMocks "meetflow/internal/domains/audit/mocks"
	auditModel "meetflow/internal/domains/audit/model"
	bookingMocks "meetflow/internal/domains/booking/mocks"
	"meetflow/internal/domains/booking/model"
	"meetflow/internal/domains/booking/model/dto"
	"meetflow/internal/domains/booking/service"
	compensationMocks "meetflow/internal/domains/compensation/mocks"
	compensationModel "meetflow/internal/domains/compensation/model"
	customerMocks "meetflow/internal/domains/customer/mocks"
	customerModel "meetflow/internal/domains/customer/model"
	idempotencyMocks "meetflow/internal/domains/idempotency/mocks"
	idempotencyModel "meetflow/internal/domains/idempotency/model"
	tenantMocks "meetflow/internal/domains/tenant/mocks"
	tenantModel "meetflow/internal/domains/tenant/model"
	"meetflow/shared/failure"
)

const (
	tenantID      = "7b1f7a8e-3c2d-4a4b-9f1e-0a5c6d7e8f90"
	salespersonID = "5d2c1b0a-9f8e-4d7c-8b6a-5f4e3d2c1b0a"
	customerID    = "c-1"
	bookingID     = "b-1"
)

type fixture struct {
	bookings      *bookingMocks.MockBooking
	holds         *bookingMocks.MockHold
	meetings      *bookingMocks.MockMeeting
	events        *bookingMocks.MockProviderEvent
	customers     *customerMocks.MockCustomer
	tenants       *tenantMocks.MockTenantService
	ledger        *idempotencyMocks.MockLedger
	compensations *compensationMocks.MockCompensationService
	recorder      *auditMocks.MockRecorder
	transactor    *pgMocks.MockTransactor
	tokens        *jwtMocks.MockJWT
	graph         *graphMocks.MockClient
	zoom          *zoomMocks.MockClient
	traced        *otelMocks.Traced
	cfg           *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.App.BaseURL = "http://localhost:3000"

	return &fixture{
		bookings:      bookingMocks.NewMockBooking(ctrl),
		holds:         bookingMocks.NewMockHold(ctrl),
		meetings:      bookingMocks.NewMockMeeting(ctrl),
		events:        bookingMocks.NewMockProviderEvent(ctrl),
		customers:     customerMocks.NewMockCustomer(ctrl),
		tenants:       tenantMocks.NewMockTenantService(ctrl),
		ledger:        idempotencyMocks.NewMockLedger(ctrl),
		compensations: compensationMocks.NewMockCompensationService(ctrl),
		recorder:      auditMocks.NewMockRecorder(ctrl),
		transactor:    pgMocks.NewMockTransactor(ctrl),
		tokens:        jwtMocks.NewMockJWT(ctrl),
		graph:         graphMocks.NewMockClient(ctrl),
		zoom:          zoomMocks.NewMockClient(ctrl),
		cfg:           cfg,
	}
}

func (f *fixture) service() service.Booking {
	tracer, traced := otelMocks.NewTracingOtel()
	f.traced = traced

	return service.New(
		service.Repositories{
			Bookings:       f.bookings,
			Holds:          f.holds,
			Meetings:       f.meetings,
			ProviderEvents: f.events,
			Customers:      f.customers,
		},
		service.Providers{Graph: f.graph, Zoom: f.zoom, Tokens: f.tokens},
		f.tenants,
		f.ledger,
		f.compensations,
		f.recorder,
		f.transactor,
		metrics.NewNoop(),
		f.cfg,
		tracer,
	)
}

func (f *fixture) runTx() {
	f.transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) })
}

func (f *fixture) runLocked() {
	f.transactor.EXPECT().WithAdvisoryLock(gomock.Any(), "booking:"+bookingID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, fn func(*sqlx.Tx) error) error { return fn(nil) })
}

func salesperson() tenantModel.Salesperson {
	return tenantModel.Salesperson{
		ID:          salespersonID,
		TenantID:    tenantID,
		GraphUserID: "graph-user-1",
		DisplayName: "S1",
		Timezone:    "Asia/Tokyo",
		Active:      true,
	}
}

func bookingIn(status string, start time.Time) model.Booking {
	return model.Booking{
		ID:             bookingID,
		TenantID:       tenantID,
		SalespersonID:  salespersonID,
		CustomerID:     customerID,
		StartAt:        start,
		EndAt:          start.Add(time.Hour),
		Status:         status,
		IdempotencyKey: "k1",
	}
}

func withJTI(booking model.Booking, jti string) model.Booking {
	booking.VerifyJTI = &jti

	return booking
}

func liveHold() model.Hold {
	return model.Hold{ID: "h-1", BookingID: bookingID, ExpiresAt: time.Now().Add(5 * time.Minute)}
}

func holdRequest(start time.Time) dto.CreateHoldRequest {
	return dto.CreateHoldRequest{
		SalespersonID: salespersonID,
		StartAt:       start.Format(time.RFC3339),
		EndAt:         start.Add(time.Hour).Format(time.RFC3339),
		Customer:      dto.CustomerRequest{Email: "jane@example.com", Name: "Jane"},
	}
}

func TestBookingService_CreateHold(t *testing.T) {
	start := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	noOverlap := &pq.Error{Code: "23P01", Constraint: model.ConstraintNoOverlap}
	sameKey := &pq.Error{Code: "23505", Constraint: model.ConstraintIdempotencyKey}

	tests := []struct {
		name      string
		key       string
		setupMock func(f *fixture)
		wantCode  int
		wantID    string
	}{
		{
			name: "creates hold",
			key:  "k1",
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
				f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
				f.customers.EXPECT().Upsert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c customerModel.Customer) (customerModel.Customer, error) {
						assert.Equal(t, "jane@example.com", c.Email)
						c.ID = customerID

						return c, nil
					})
				f.runTx()
				f.bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, b model.Booking) error {
						assert.Equal(t, model.StatusHold, b.Status)
						assert.Equal(t, "k1", b.IdempotencyKey)
						assert.Equal(t, customerID, b.CustomerID)
						assert.True(t, start.Equal(b.StartAt))
						assert.Nil(t, b.VerifyJTI)

						return nil
					})
				f.holds.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, h model.Hold) error {
						assert.WithinDuration(t, time.Now().Add(10*time.Minute), h.ExpiresAt, 5*time.Second)

						return nil
					})
			},
		},
		{
			name: "replays existing hold for the same key",
			key:  "k1",
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)
				f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)
			},
			wantID: bookingID,
		},
		{
			name: "replays hold created by a concurrent request",
			key:  "k1",
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
				f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
				f.customers.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(customerModel.Customer{ID: customerID}, nil)
				f.runTx()
				f.bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(sameKey)
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)
				f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)
			},
			wantID: bookingID,
		},
		{
			name: "overlapping slot is a conflict",
			key:  "k2",
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil).Times(2)
				f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
				f.customers.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(customerModel.Customer{ID: customerID}, nil)
				f.runTx()
				f.bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(noOverlap)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "unknown salesperson",
			key:  "k3",
			setupMock: func(f *fixture) {
				f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
				f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).
					Return(tenantModel.Salesperson{}, failure.NotFound("salesperson not found"))
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:      "missing idempotency key",
			key:       "",
			setupMock: func(*fixture) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.service().CreateHold(context.Background(), tenantID, tt.key, holdRequest(start))
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusHold, res.Status)
			assert.NotEmpty(t, res.HoldExpiresAt)

			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, res.BookingID)
			}
		})
	}
}

func TestBookingService_CreateHoldInPast(t *testing.T) {
	f := newFixture(t)

	_, err := f.service().CreateHold(context.Background(), tenantID, "k1", holdRequest(time.Now().Add(-time.Hour)))
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}

func TestBookingService_SendVerification(t *testing.T) {
	start := time.Now().Add(2 * time.Hour)

	t.Run("replay acknowledges without sending", func(t *testing.T) {
		f := newFixture(t)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(true, nil)

		res, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k2")
		require.NoError(t, err)
		assert.Equal(t, "sent", res.Status)
		assert.Empty(t, res.Token)
	})

	t.Run("mints token and moves to pending verification", func(t *testing.T) {
		f := newFixture(t)
		hold := liveHold()

		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(hold, nil)
		f.tokens.EXPECT().Mint(gomock.Any()).DoAndReturn(func(c jwt.Capability) (string, error) {
			assert.Equal(t, jwt.PurposeVerify, c.Purpose)
			assert.Equal(t, hold.ExpiresAt, c.ExpiresAt)
			assert.NotEmpty(t, c.JTI)

			return "verify-token", nil
		})
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusPendingVerify, mod[model.FieldStatus])
				assert.NotEmpty(t, mod[model.FieldVerifyJTI])

				return 1, nil
			})
		f.customers.EXPECT().Get(gomock.Any(), gomock.Any()).Return(customerModel.Customer{ID: customerID, Email: "jane@example.com"}, nil)
		f.graph.EXPECT().SendMail(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in graph.MailInput) error {
			assert.Equal(t, "jane@example.com", in.To)
			assert.Contains(t, in.Body, "verify?token=verify-token")

			return nil
		})
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(nil)

		res, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k2")
		require.NoError(t, err)
		assert.Equal(t, "sent", res.Status)
		assert.Empty(t, res.Token)
	})

	t.Run("resend reuses the stored identifier and echoes token in mock mode", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.External.Graph.Mock = true

		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k4").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(withJTI(bookingIn(model.StatusPendingVerify, start), "jti-1"), nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)
		f.tokens.EXPECT().Mint(gomock.Any()).DoAndReturn(func(c jwt.Capability) (string, error) {
			assert.Equal(t, "jti-1", c.JTI)

			return "verify-token", nil
		})
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.customers.EXPECT().Get(gomock.Any(), gomock.Any()).Return(customerModel.Customer{Email: "jane@example.com"}, nil)
		f.graph.EXPECT().SendMail(gomock.Any(), gomock.Any()).Return(nil)
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k4").Return(nil)

		res, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k4")
		require.NoError(t, err)
		assert.Equal(t, "verify-token", res.Token)
	})

	t.Run("expired hold is expired and reported", func(t *testing.T) {
		f := newFixture(t)

		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Hold{ID: "h-1", BookingID: bookingID, ExpiresAt: time.Now().Add(-time.Second)}, nil)
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusExpired, mod[model.FieldStatus])

				return 1, nil
			})

		_, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k2")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("mail failure leaves the key unrecorded", func(t *testing.T) {
		f := newFixture(t)

		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)
		f.tokens.EXPECT().Mint(gomock.Any()).Return("verify-token", nil)
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.customers.EXPECT().Get(gomock.Any(), gomock.Any()).Return(customerModel.Customer{Email: "jane@example.com"}, nil)
		f.graph.EXPECT().SendMail(gomock.Any(), gomock.Any()).Return(errors.New("mailbox unavailable"))

		_, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k2")
		assert.Error(t, err)
	})

	t.Run("confirmed booking cannot be re-verified", func(t *testing.T) {
		f := newFixture(t)

		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeVerifyEmail, "k2").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, start), nil)

		_, err := f.service().SendVerification(context.Background(), tenantID, bookingID, "k2")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func verifyCapability(jti string) jwt.Capability {
	return jwt.Capability{Purpose: jwt.PurposeVerify, BookingID: bookingID, TenantID: tenantID, JTI: jti}
}

// expectConfirmReads covers everything Confirm does before the first provider call.
func expectConfirmReads(f *fixture, booking model.Booking) {
	f.tokens.EXPECT().Verify("verify-token").Return(verifyCapability("jti-1"), nil)
	f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(false, nil)
	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(booking, nil)
	f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)
	f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
	f.customers.EXPECT().Get(gomock.Any(), gomock.Any()).Return(customerModel.Customer{ID: customerID, Email: "jane@example.com"}, nil)
}

var (
	createdMeeting = zoom.Meeting{MeetingID: "m-1", JoinURL: "https://zoom.example/join/1", StartURL: "https://zoom.example/start/1"}
	createdEvent   = graph.EventResult{EventID: "evt-1", ICalUID: "ical-1", ETag: "etag-1"}
)

func TestBookingService_Confirm(t *testing.T) {
	start := time.Now().Add(2 * time.Hour)
	pending := withJTI(bookingIn(model.StatusPendingVerify, start), "jti-1")

	t.Run("runs the saga and confirms", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in zoom.MeetingInput) (zoom.Meeting, error) {
			assert.Equal(t, time.Hour, in.Duration)
			assert.Equal(t, "Asia/Tokyo", in.Timezone)

			return createdMeeting, nil
		})
		f.graph.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, in graph.EventInput) (graph.EventResult, error) {
			assert.Equal(t, "graph-user-1", in.OrganizerUserID)
			assert.Equal(t, "jane@example.com", in.AttendeeEmail)
			assert.Contains(t, in.Body, createdMeeting.JoinURL)

			return createdEvent, nil
		})
		f.runLocked()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(pending, nil)
		f.holds.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(liveHold(), nil)
		f.meetings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, m model.Meeting) error {
				assert.Equal(t, "m-1", m.ProviderMeetingID)
				assert.Equal(t, model.ProviderZoom, m.Provider)

				return nil
			})
		f.events.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, e model.ProviderEvent) error {
				assert.Equal(t, "evt-1", e.EventID)
				assert.Equal(t, "etag-1", e.ETag)

				return nil
			})
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusConfirmed, mod[model.FieldStatus])
				assert.Contains(t, mod, model.FieldVerifyJTI)
				assert.Nil(t, mod[model.FieldVerifyJTI])

				return 1, nil
			})
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(nil)

		res, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
		assert.Equal(t, bookingID, res.ID)
	})

	t.Run("replay returns current state without provider calls", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("verify-token").Return(verifyCapability("jti-1"), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(true, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, start), nil)

		res, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("superseded token is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("verify-token").Return(verifyCapability("jti-old"), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("wrong purpose is forbidden", func(t *testing.T) {
		f := newFixture(t)

		capability := verifyCapability("jti-1")
		capability.Purpose = jwt.PurposeCancel
		f.tokens.EXPECT().Verify("verify-token").Return(capability, nil)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("token from another tenant is forbidden", func(t *testing.T) {
		f := newFixture(t)

		capability := verifyCapability("jti-1")
		capability.TenantID = "other-tenant"
		f.tokens.EXPECT().Verify("verify-token").Return(capability, nil)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		f := newFixture(t)
		f.tokens.EXPECT().Verify("verify-token").Return(jwt.Capability{}, jwt.ErrExpiredToken)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("meeting failure needs no compensation", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		zoomErr := errors.New("zoom down")
		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).Return(zoom.Meeting{}, zoomErr)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.ErrorContains(t, err, "zoom down")
		require.Len(t, f.traced.Errors(), 1)
		assert.ErrorIs(t, f.traced.Errors()[0], zoomErr)
	})

	t.Run("calendar failure after meeting records compensation", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		calendarErr := errors.New("graph down")

		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).Return(createdMeeting, nil)
		f.graph.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(graph.EventResult{}, calendarErr)
		f.compensations.EXPECT().Record(gomock.Any(), tenantID, bookingID, compensationModel.ReasonCalendarFailedAfterMeeting, calendarErr).Return(nil)
		f.zoom.EXPECT().DeleteMeeting(gomock.Any(), "m-1").Return(errors.New("cleanup failed too"))
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionCompensationRecorded, entry.Action)
		})

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		require.Error(t, err)
		assert.ErrorIs(t, err, calendarErr)
	})

	t.Run("persist failure removes both provider artifacts", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).Return(createdMeeting, nil)
		f.graph.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(createdEvent, nil)
		f.transactor.EXPECT().WithAdvisoryLock(gomock.Any(), "booking:"+bookingID, gomock.Any()).Return(errors.New("connection reset"))
		f.compensations.EXPECT().Record(gomock.Any(), tenantID, bookingID, compensationModel.ReasonPersistFailedAfterProviders, gomock.Any()).Return(nil)
		f.zoom.EXPECT().DeleteMeeting(gomock.Any(), "m-1").Return(nil)
		f.graph.EXPECT().DeleteEvent(gomock.Any(), "graph-user-1", "evt-1").Return(nil)
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any())

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("losing a confirm race discards duplicate artifacts", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).Return(createdMeeting, nil)
		f.graph.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(createdEvent, nil)
		f.runLocked()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, start), nil)
		f.zoom.EXPECT().DeleteMeeting(gomock.Any(), "m-1").Return(nil)
		f.graph.EXPECT().DeleteEvent(gomock.Any(), "graph-user-1", "evt-1").Return(nil)
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(nil)

		res, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		require.NoError(t, err)
		assert.Equal(t, model.StatusConfirmed, res.Status)
	})

	t.Run("hold lapsing while providers are called expires and compensates", func(t *testing.T) {
		f := newFixture(t)
		expectConfirmReads(f, pending)

		f.zoom.EXPECT().CreateMeeting(gomock.Any(), gomock.Any()).Return(createdMeeting, nil)
		f.graph.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(createdEvent, nil)
		f.runLocked()
		f.bookings.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(pending, nil)
		f.holds.EXPECT().GetTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.Hold{ID: "h-1", BookingID: bookingID, ExpiresAt: time.Now().Add(-time.Second)}, nil)
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusExpired, mod[model.FieldStatus])

				return 1, nil
			})
		f.compensations.EXPECT().Record(gomock.Any(), tenantID, bookingID, compensationModel.ReasonHoldExpiredDuringSaga, gomock.Any()).Return(nil)
		f.zoom.EXPECT().DeleteMeeting(gomock.Any(), "m-1").Return(nil)
		f.graph.EXPECT().DeleteEvent(gomock.Any(), "graph-user-1", "evt-1").Return(nil)
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, compensationModel.ReasonHoldExpiredDuringSaga, entry.Meta["reason"])
		})

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("expired hold is expired and reported", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("verify-token").Return(verifyCapability("jti-1"), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeConfirm, "k3").Return(false, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pending, nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).
			Return(model.Hold{ID: "h-1", ExpiresAt: time.Now().Add(-time.Minute)}, nil)
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)

		_, err := f.service().Confirm(context.Background(), tenantID, "verify-token", "k3")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestBookingService_Cancel(t *testing.T) {
	farStart := time.Now().Add(48 * time.Hour)
	cancelCapability := jwt.Capability{Purpose: jwt.PurposeCancel, BookingID: bookingID, TenantID: tenantID, JTI: "c-jti"}

	t.Run("cancels and cleans up providers", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, farStart), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeCancel, "k5").Return(false, nil)
		f.bookings.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusCanceled, mod[model.FieldStatus])

				return 1, nil
			})
		f.events.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.ProviderEvent{EventID: "evt-1", OrganizerUserID: "graph-user-1"}, nil)
		f.graph.EXPECT().DeleteEvent(gomock.Any(), "graph-user-1", "evt-1").Return(nil)
		f.meetings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Meeting{ProviderMeetingID: "m-1"}, nil)
		f.zoom.EXPECT().DeleteMeeting(gomock.Any(), "m-1").Return(errors.New("zoom down"))
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeCancel, "k5").Return(nil)
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionBookingCanceled, entry.Action)
			assert.Equal(t, customerID, entry.ActorID)
		})

		res, err := f.service().Cancel(context.Background(), tenantID, bookingID, "cancel-token", "k5")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCanceled, res.Status)
	})

	t.Run("already canceled is idempotent", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusCanceled, farStart), nil)

		res, err := f.service().Cancel(context.Background(), tenantID, bookingID, "cancel-token", "k5")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCanceled, res.Status)
	})

	t.Run("replayed key short circuits", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, farStart), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeCancel, "k5").Return(true, nil)

		res, err := f.service().Cancel(context.Background(), tenantID, bookingID, "cancel-token", "k5")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCanceled, res.Status)
	})

	t.Run("past the deadline is refused", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, time.Now().Add(2*time.Hour)), nil)

		_, err := f.service().Cancel(context.Background(), tenantID, bookingID, "cancel-token", "k5")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("token for another booking is forbidden", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)

		_, err := f.service().Cancel(context.Background(), tenantID, "b-2", "cancel-token", "k5")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})

	t.Run("unconfirmed booking is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("cancel-token").Return(cancelCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, farStart), nil)

		_, err := f.service().Cancel(context.Background(), tenantID, bookingID, "cancel-token", "k5")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestBookingService_Reschedule(t *testing.T) {
	farStart := time.Now().Add(48 * time.Hour)
	newStart := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	rescheduleCapability := jwt.Capability{Purpose: jwt.PurposeReschedule, BookingID: bookingID, TenantID: tenantID, JTI: "r-jti"}
	req := dto.RescheduleRequest{
		Token:      "reschedule-token",
		NewStartAt: newStart.Format(time.RFC3339),
		NewEndAt:   newStart.Add(time.Hour).Format(time.RFC3339),
	}

	t.Run("cancels and opens a fresh hold", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("reschedule-token").Return(rescheduleCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, farStart), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeReschedule, "k6").Return(false, nil)
		f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
		f.runTx()
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusCanceled, mod[model.FieldStatus])

				return 1, nil
			})
		f.bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, b model.Booking) error {
				assert.NotEqual(t, bookingID, b.ID)
				assert.Equal(t, model.StatusHold, b.Status)
				assert.Equal(t, "k6", b.IdempotencyKey)
				assert.Equal(t, customerID, b.CustomerID)
				assert.True(t, newStart.Equal(b.StartAt))

				return nil
			})
		f.holds.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.events.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.ProviderEvent{}, nil)
		f.meetings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Meeting{}, nil)
		f.ledger.EXPECT().Record(gomock.Any(), tenantID, idempotencyModel.ScopeReschedule, "k6").Return(nil)
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
			assert.Equal(t, auditModel.ActionBookingRescheduled, entry.Action)
			assert.NotEmpty(t, entry.Meta["new_booking_id"])
		})

		res, err := f.service().Reschedule(context.Background(), tenantID, bookingID, "k6", req)
		require.NoError(t, err)
		assert.Equal(t, "rescheduled", res.Status)
		assert.NotEmpty(t, res.BookingID)
		assert.NotEqual(t, bookingID, res.BookingID)
	})

	t.Run("replay returns the hold created under the key", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("reschedule-token").Return(rescheduleCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusCanceled, farStart), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeReschedule, "k6").Return(true, nil)

		next := bookingIn(model.StatusHold, newStart)
		next.ID = "b-2"
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(next, nil)
		f.holds.EXPECT().Get(gomock.Any(), gomock.Any()).Return(liveHold(), nil)

		res, err := f.service().Reschedule(context.Background(), tenantID, bookingID, "k6", req)
		require.NoError(t, err)
		assert.Equal(t, "b-2", res.BookingID)
	})

	t.Run("occupied new window is a conflict", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("reschedule-token").Return(rescheduleCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, farStart), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeReschedule, "k6").Return(false, nil)
		f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)
		f.runTx()
		f.bookings.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.bookings.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&pq.Error{Code: "23P01", Constraint: model.ConstraintNoOverlap})

		_, err := f.service().Reschedule(context.Background(), tenantID, bookingID, "k6", req)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("past the deadline is refused", func(t *testing.T) {
		f := newFixture(t)

		f.tokens.EXPECT().Verify("reschedule-token").Return(rescheduleCapability, nil)
		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, time.Now().Add(time.Hour)), nil)
		f.ledger.EXPECT().Check(gomock.Any(), tenantID, idempotencyModel.ScopeReschedule, "k6").Return(false, nil)

		_, err := f.service().Reschedule(context.Background(), tenantID, bookingID, "k6", req)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestBookingService_RecordAttendance(t *testing.T) {
	f := newFixture(t)

	f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, time.Now()), nil)
	f.recorder.EXPECT().Track(gomock.Any(), tenantID, bookingID, auditModel.TrackingNoShow, gomock.Nil())
	f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any())

	res, err := f.service().RecordAttendance(context.Background(), tenantID, bookingID, dto.AttendanceRequest{Status: dto.AttendanceNoShow})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}

func TestBookingService_IssueToken(t *testing.T) {
	start := time.Now().Add(48 * time.Hour)

	t.Run("confirmed booking", func(t *testing.T) {
		f := newFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusConfirmed, start), nil)
		f.tokens.EXPECT().Mint(gomock.Any()).DoAndReturn(func(c jwt.Capability) (string, error) {
			assert.Equal(t, jwt.PurposeCancel, c.Purpose)
			assert.Equal(t, start, c.ExpiresAt)
			assert.NotEmpty(t, c.JTI)

			return "cancel-token", nil
		})

		res, err := f.service().IssueToken(context.Background(), tenantID, dto.IssueTokenRequest{BookingID: bookingID, Purpose: "cancel"})
		require.NoError(t, err)
		assert.Equal(t, "cancel-token", res.Token)
	})

	t.Run("unconfirmed booking", func(t *testing.T) {
		f := newFixture(t)

		f.bookings.EXPECT().Get(gomock.Any(), gomock.Any()).Return(bookingIn(model.StatusHold, start), nil)

		_, err := f.service().IssueToken(context.Background(), tenantID, dto.IssueTokenRequest{BookingID: bookingID, Purpose: "reschedule"})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("verify purpose is not issuable", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service().IssueToken(context.Background(), tenantID, dto.IssueTokenRequest{BookingID: bookingID, Purpose: "verify"})
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestBookingService_ExpireHolds(t *testing.T) {
	f := newFixture(t)

	f.bookings.EXPECT().ExpireHolds(gomock.Any(), gomock.Any()).Return(int64(3), nil)

	expired, err := f.service().ExpireHolds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)

	f.bookings.EXPECT().ExpireHolds(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("db down"))

	_, err = f.service().ExpireHolds(context.Background())
	assert.Error(t, err)
}

func TestBookingService_GetAvailability(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	at := func(hour int) time.Time { return time.Date(2030, 1, 15, hour, 0, 0, 0, tokyo) }

	f := newFixture(t)
	svc := f.service()

	f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil).Times(2)
	f.graph.EXPECT().GetBusySlots(gomock.Any(), "graph-user-1", gomock.Any(), gomock.Any()).
		Return([]graph.BusySlot{{Start: at(10), End: at(11)}}, nil).Times(1)
	f.bookings.EXPECT().ListOverlapping(gomock.Any(), salespersonID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, from, to time.Time) ([]model.Booking, error) {
			assert.True(t, from.Equal(at(9)))
			assert.True(t, to.Equal(at(17)))

			return []model.Booking{{StartAt: at(14).UTC(), EndAt: at(15).UTC()}}, nil
		}).Times(1)

	res, err := svc.GetAvailability(context.Background(), tenantID, salespersonID, "2030-01-15")
	require.NoError(t, err)

	// 10:00-11:00 padded by ten minutes blocks 09:00-12:00; the local booking blocks 14:00-15:00
	want := []dto.Slot{
		{StartAtUTC: "2030-01-15T03:00:00Z", EndAtUTC: "2030-01-15T04:00:00Z"},
		{StartAtUTC: "2030-01-15T04:00:00Z", EndAtUTC: "2030-01-15T05:00:00Z"},
		{StartAtUTC: "2030-01-15T06:00:00Z", EndAtUTC: "2030-01-15T07:00:00Z"},
		{StartAtUTC: "2030-01-15T07:00:00Z", EndAtUTC: "2030-01-15T08:00:00Z"},
	}
	assert.Equal(t, want, res.Slots)

	cached, err := svc.GetAvailability(context.Background(), tenantID, salespersonID, "2030-01-15")
	require.NoError(t, err)
	assert.Equal(t, want, cached.Slots)
}

func TestBookingService_GetAvailabilityBadDate(t *testing.T) {
	f := newFixture(t)

	f.tenants.EXPECT().GetSalesperson(gomock.Any(), tenantID, salespersonID).Return(salesperson(), nil)

	_, err := f.service().GetAvailability(context.Background(), tenantID, salespersonID, "15/01/2030")
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
}
