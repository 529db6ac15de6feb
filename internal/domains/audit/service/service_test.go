package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	otelMocks "meetflow/infras/otel/mocks"
	"meetflow/internal/domains/audit/mocks"
	"meetflow/internal/domains/audit/model"
	"meetflow/internal/domains/audit/service"
	"meetflow/shared/constant"
)

func TestRecorder_Audit(t *testing.T) {
	ctrl := gomock.NewController(t)
	audits := mocks.NewMockAuditLog(ctrl)
	tracking := mocks.NewMockTrackingEvent(ctrl)
	recorder := service.New(audits, tracking, otelMocks.NewOtel())

	audits.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, row model.AuditLog) error {
			assert.NoError(t, ctx.Err())
			assert.NotEmpty(t, row.ID)
			assert.Equal(t, "t-1", row.TenantID)
			assert.Equal(t, constant.ActorTypeSystem, row.ActorType)
			assert.Equal(t, model.ActionWebhookJobStatus, row.Action)
			assert.False(t, row.CreatedAt.IsZero())

			meta := map[string]any{}
			require.NoError(t, json.Unmarshal(row.Meta, &meta))
			assert.Equal(t, "done", meta["status"])

			return nil
		})

	// the caller's context is already gone; the write still happens
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder.Audit(ctx, model.Entry{
		TenantID:   "t-1",
		ActorType:  constant.ActorTypeSystem,
		ActorID:    "webhook-worker",
		Action:     model.ActionWebhookJobStatus,
		EntityType: model.EntityWebhookJob,
		EntityID:   "job-1",
		Meta:       map[string]any{"status": "done"},
	})
}

func TestRecorder_AuditErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	audits := mocks.NewMockAuditLog(ctrl)
	tracking := mocks.NewMockTrackingEvent(ctrl)
	recorder := service.New(audits, tracking, otelMocks.NewOtel())

	audits.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		recorder.Audit(context.Background(), model.Entry{TenantID: "t-1", Action: model.ActionAttendanceRecorded})
	})
}

func TestRecorder_Track(t *testing.T) {
	ctrl := gomock.NewController(t)
	audits := mocks.NewMockAuditLog(ctrl)
	tracking := mocks.NewMockTrackingEvent(ctrl)
	recorder := service.New(audits, tracking, otelMocks.NewOtel())

	tracking.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row model.TrackingEvent) error {
			assert.Equal(t, "b-1", row.BookingID)
			assert.Equal(t, model.TrackingEventDeletedBySales, row.Type)
			assert.JSONEq(t, `{"source":"sales_manual","resource_id":"evt-1"}`, string(row.Meta))

			return errors.New("ignored")
		})

	recorder.Track(context.Background(), "t-1", "b-1", model.TrackingEventDeletedBySales,
		map[string]any{"source": "sales_manual", "resource_id": "evt-1"})
}

func TestRecorder_TrackWithoutMeta(t *testing.T) {
	ctrl := gomock.NewController(t)
	audits := mocks.NewMockAuditLog(ctrl)
	tracking := mocks.NewMockTrackingEvent(ctrl)
	recorder := service.New(audits, tracking, otelMocks.NewOtel())

	tracking.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, row model.TrackingEvent) error {
			assert.Equal(t, "{}", string(row.Meta))

			return nil
		})

	recorder.Track(context.Background(), "t-1", "b-1", model.TrackingAttended, nil)
}
