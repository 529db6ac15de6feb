package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"meetflow/config"
	"meetflow/infras/metrics"
	otelMocks "meetflow/infras/otel/mocks"
	"meetflow/infras/queue"
	queueMocks "meetflow/infras/queue/mocks"
	s3Mocks "meetflow/infras/s3/mocks"
	auditMocks "meetflow/internal/domains/audit/mocks"
	auditModel "meetflow/internal/domains/audit/model"
	reconciliationMocks "meetflow/internal/domains/reconciliation/mocks"
	subscriptionMocks "meetflow/internal/domains/subscription/mocks"
	subscriptionModel "meetflow/internal/domains/subscription/model"
	webhookMocks "meetflow/internal/domains/webhook/mocks"
	"meetflow/internal/domains/webhook/model"
	"meetflow/internal/domains/webhook/model/dto"
	"meetflow/internal/domains/webhook/service"
)

const (
	tenantID      = "7b1f7a8e-3c2d-4a4b-9f1e-0a5c6d7e8f90"
	salespersonID = "5d2c1b0a-9f8e-4d7c-8b6a-5f4e3d2c1b0a"
)

type fixture struct {
	repo          *webhookMocks.MockJob
	subscriptions *subscriptionMocks.MockSubscriptionService
	reconciler    *reconciliationMocks.MockReconciler
	recorder      *auditMocks.MockRecorder
	queue         *queueMocks.MockQueue
	archive       *s3Mocks.MockS3
	cfg           *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	return &fixture{
		repo:          webhookMocks.NewMockJob(ctrl),
		subscriptions: subscriptionMocks.NewMockSubscriptionService(ctrl),
		reconciler:    reconciliationMocks.NewMockReconciler(ctrl),
		recorder:      auditMocks.NewMockRecorder(ctrl),
		queue:         queueMocks.NewMockQueue(ctrl),
		archive:       s3Mocks.NewMockS3(ctrl),
		cfg:           &config.Config{},
	}
}

func (f *fixture) service() service.Webhook {
	return service.New(f.repo, f.subscriptions, f.reconciler, f.recorder, f.queue, f.archive, metrics.NewNoop(), f.cfg, otelMocks.NewOtel())
}

func (f *fixture) knownSubscription() {
	f.subscriptions.EXPECT().Resolve(gomock.Any(), "sub-1").
		Return(subscriptionModel.Subscription{ID: "row-1", TenantID: tenantID, SalespersonID: salespersonID, SubscriptionID: "sub-1"}, nil)
}

func deleted(id string) dto.Notification {
	return dto.Notification{
		ID:             id,
		SubscriptionID: "sub-1",
		ChangeType:     "Deleted",
		Resource:       "Users/u-1/Events/evt-1",
	}
}

func TestWebhookService_Ingest(t *testing.T) {
	t.Run("creates and enqueues a job", func(t *testing.T) {
		f := newFixture(t)
		f.knownSubscription()

		var inserted model.Job

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job model.Job) error {
			inserted = job

			return nil
		})
		f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, item queue.Item) error {
			assert.Equal(t, inserted.ID, item.JobID)

			return nil
		})

		res, err := f.service().Ingest(context.Background(), dto.NotificationBatch{Value: []dto.Notification{deleted("n-1")}}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Accepted)
		assert.Equal(t, model.ChangeDeleted, inserted.ChangeType)
		assert.Equal(t, "evt-1", inserted.ResourceID)
		assert.Equal(t, model.StatusPending, inserted.Status)
		assert.Equal(t, tenantID, inserted.TenantID)
		require.NotNil(t, inserted.NotificationID)
		assert.Equal(t, "n-1", *inserted.NotificationID)
	})

	t.Run("same notification id twice yields one job", func(t *testing.T) {
		f := newFixture(t)
		f.subscriptions.EXPECT().Resolve(gomock.Any(), "sub-1").
			Return(subscriptionModel.Subscription{ID: "row-1", TenantID: tenantID, SalespersonID: salespersonID}, nil).Times(2)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		f.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		batch := dto.NotificationBatch{Value: []dto.Notification{deleted("n-1"), deleted("n-1")}}

		res, err := f.service().Ingest(context.Background(), batch, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Accepted)
		assert.Equal(t, 1, res.Duplicates)
	})

	t.Run("insert race on the unique index counts as duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.knownSubscription()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23505"})

		res, err := f.service().Ingest(context.Background(), dto.NotificationBatch{Value: []dto.Notification{deleted("")}}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Duplicates)
	})

	t.Run("drops incomplete, unknown and forged notifications", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Webhook.ClientState = "expected"

		f.subscriptions.EXPECT().Resolve(gomock.Any(), "sub-unknown").Return(subscriptionModel.Subscription{}, nil)

		unknown := deleted("n-2")
		unknown.SubscriptionID = "sub-unknown"
		unknown.ClientState = "expected"

		forged := deleted("n-3")
		forged.ClientState = "wrong"

		batch := dto.NotificationBatch{Value: []dto.Notification{
			{ID: "n-1", ChangeType: "deleted", Resource: "/users/u/events/e"},
			{ID: "n-4", SubscriptionID: "sub-1", Resource: "/users/u/events/e"},
			{ID: "n-5", SubscriptionID: "sub-1", ChangeType: "deleted"},
			unknown,
			forged,
		}}

		res, err := f.service().Ingest(context.Background(), batch, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, res.Dropped)
		assert.Zero(t, res.Accepted)
	})

	t.Run("unsupported change type fails validation", func(t *testing.T) {
		f := newFixture(t)
		f.knownSubscription()

		n := deleted("n-1")
		n.ChangeType = "missed"

		res, err := f.service().Ingest(context.Background(), dto.NotificationBatch{Value: []dto.Notification{n}}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Dropped)
	})

	t.Run("archives the raw batch when enabled", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Webhook.Archive.Enable = true
		f.cfg.Webhook.Archive.Bucket = "webhooks"
		f.cfg.Webhook.Archive.Directory = "graph"

		f.archive.EXPECT().UploadFileBytes(gomock.Any(), "webhooks", "graph", gomock.Any(), "application/json", []byte(`{"value":[]}`)).
			Return("graph/x.json", errors.New("bucket unavailable"))

		res, err := f.service().Ingest(context.Background(), dto.NotificationBatch{}, []byte(`{"value":[]}`))
		require.NoError(t, err)
		assert.Zero(t, res.Accepted)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newFixture(t)
		f.knownSubscription()

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

		_, err := f.service().Ingest(context.Background(), dto.NotificationBatch{Value: []dto.Notification{deleted("n-1")}}, nil)
		assert.Error(t, err)
	})
}

func TestNotification_ResourceID(t *testing.T) {
	assert.Equal(t, "evt-9", dto.Notification{ResourceData: &dto.ResourceData{ID: "evt-9"}, Resource: "/users/u/events/other"}.ResourceID())
	assert.Equal(t, "evt-1", dto.Notification{Resource: "/users/u/events/evt-1/"}.ResourceID())
	assert.Empty(t, dto.Notification{}.ResourceID())
}

func pendingJob(attempts int) model.Job {
	return model.Job{ID: "job-1", TenantID: tenantID, ChangeType: model.ChangeDeleted, ResourceID: "evt-1", Status: model.StatusPending, Attempts: attempts}
}

func (f *fixture) expectTransitions(t *testing.T, statuses ...string) {
	t.Helper()

	for _, status := range statuses {
		want := status
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, want, mod[model.FieldStatus])

				return 1, nil
			})
	}

	f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry auditModel.Entry) {
		assert.Equal(t, auditModel.ActionWebhookJobStatus, entry.Action)
		assert.Equal(t, auditModel.EntityWebhookJob, entry.EntityType)
	}).Times(len(statuses))
}

func TestWebhookService_Process(t *testing.T) {
	t.Run("reconciles and completes", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(0), nil)
		f.expectTransitions(t, model.StatusProcessing, model.StatusDone)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, job model.Job) error {
			assert.Equal(t, 1, job.Attempts)

			return nil
		})

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, res.Status)
	})

	t.Run("fifth attempt succeeding completes the job", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(4), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusDone, mod[model.FieldStatus])
				assert.Equal(t, 5, mod[model.FieldAttempts])

				return 1, nil
			})
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Times(2)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusDone, res.Status)
	})

	t.Run("failure below the bound is retried with backoff", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(2), nil)
		f.expectTransitions(t, model.StatusProcessing, model.StatusPending)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(errors.New("graph down"))

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, res.Status)
		assert.Equal(t, 4*time.Second, res.RetryIn)
	})

	t.Run("fifth failure is terminal with the error recorded", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(4), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				assert.Equal(t, model.StatusFailed, mod[model.FieldStatus])
				assert.Equal(t, 5, mod[model.FieldAttempts])

				lastError, ok := mod[model.FieldLastError].(*string)
				require.True(t, ok)
				require.NotNil(t, lastError)
				assert.Equal(t, "graph down", *lastError)

				return 1, nil
			})
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Times(2)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(errors.New("graph down"))

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, res.Status)
		assert.Zero(t, res.RetryIn)
	})

	t.Run("multi-byte error is cut on a rune boundary", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(4), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
				lastError, ok := mod[model.FieldLastError].(*string)
				require.True(t, ok)
				require.NotNil(t, lastError)
				assert.True(t, utf8.ValidString(*lastError))
				assert.LessOrEqual(t, len(*lastError), 2000)
				assert.NotContains(t, *lastError, "\x00")

				return 1, nil
			})
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Times(2)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).
			Return(errors.New("x\x00" + strings.Repeat("予定", 1000)))

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, res.Status)
	})

	t.Run("status is persisted after the worker is canceled", func(t *testing.T) {
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pendingJob(0), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, mod map[string]any, _ any) (int64, error) {
				assert.NoError(t, ctx.Err())
				assert.Equal(t, model.StatusPending, mod[model.FieldStatus])

				return 1, nil
			})
		f.recorder.EXPECT().Audit(gomock.Any(), gomock.Any()).Times(2)
		f.reconciler.EXPECT().Reconcile(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ model.Job) error {
				cancel()

				return ctx.Err()
			})

		res, err := f.service().Process(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, res.Status)
	})

	t.Run("finished job delivered again is skipped", func(t *testing.T) {
		f := newFixture(t)

		done := pendingJob(1)
		done.Status = model.StatusDone
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(done, nil)

		res, err := f.service().Process(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, "skipped", res.Status)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Job{}, errors.New("db down"))

		_, err := f.service().Process(context.Background(), "job-1")
		assert.Error(t, err)
	})
}

func TestBackoff(t *testing.T) {
	limit := 60 * time.Second

	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: time.Second},
		{attempts: 1, want: time.Second},
		{attempts: 2, want: 2 * time.Second},
		{attempts: 4, want: 8 * time.Second},
		{attempts: 6, want: 32 * time.Second},
		{attempts: 7, want: limit},
		{attempts: 100, want: limit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.Backoff(tt.attempts, limit), "attempts=%d", tt.attempts)
	}
}

func TestWebhookService_Recover(t *testing.T) {
	stale := []model.Job{
		{ID: "job-1", Status: model.StatusPending, Attempts: 2},
		{ID: "job-2", Status: model.StatusProcessing, Attempts: 1},
	}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		want      int
		wantErr   bool
	}{
		{
			name: "claims and re-enqueues stale jobs",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().ListStale(gomock.Any(), gomock.Any(), 100).
					DoAndReturn(func(_ context.Context, cutoff time.Time, _ int) ([]model.Job, error) {
						assert.WithinDuration(t, time.Now().Add(-5*time.Minute), cutoff, time.Minute)

						return stale, nil
					})
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, mod map[string]any, _ any) (int64, error) {
						assert.Contains(t, mod, model.FieldUpdatedAt)
						assert.NotContains(t, mod, model.FieldStatus)

						return 1, nil
					}).Times(2)
				f.queue.EXPECT().Enqueue(gomock.Any(), queue.Item{JobID: "job-1"}).Return(nil)
				f.queue.EXPECT().Enqueue(gomock.Any(), queue.Item{JobID: "job-2"}).Return(nil)
			},
			want: 2,
		},
		{
			name: "job claimed elsewhere is not enqueued twice",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().ListStale(gomock.Any(), gomock.Any(), gomock.Any()).Return(stale[:1], nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)
			},
		},
		{
			name: "failed enqueue leaves the job for the next pass",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().ListStale(gomock.Any(), gomock.Any(), gomock.Any()).Return(stale, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)
				f.queue.EXPECT().Enqueue(gomock.Any(), queue.Item{JobID: "job-1"}).Return(errors.New("broker down"))
				f.queue.EXPECT().Enqueue(gomock.Any(), queue.Item{JobID: "job-2"}).Return(nil)
			},
			want: 1,
		},
		{
			name: "listing failure is returned",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().ListStale(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			got, err := f.service().Recover(context.Background())
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
