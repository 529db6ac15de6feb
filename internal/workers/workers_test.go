package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"meetflow/config"
	"meetflow/infras/metrics"
	otelMocks "meetflow/infras/otel/mocks"
	"meetflow/infras/queue"
	queueMocks "meetflow/infras/queue/mocks"
	"meetflow/infras/redis"
	redisMocks "meetflow/infras/redis/mocks"
	bookingMocks "meetflow/internal/domains/booking/mocks"
	subscriptionMocks "meetflow/internal/domains/subscription/mocks"
	subscriptionDto "meetflow/internal/domains/subscription/model/dto"
	webhookMocks "meetflow/internal/domains/webhook/mocks"
	webhookModel "meetflow/internal/domains/webhook/model"
	webhookDto "meetflow/internal/domains/webhook/model/dto"
	"meetflow/internal/workers"
)

func TestRunner_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32

	runner := workers.NewRunner(metrics.NewNoop(), otelMocks.NewOtel(), workers.Task{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(_ context.Context) error {
			ticks.Add(1)

			return errors.New("ignored")
		},
	}, workers.Task{
		Name:     "panics",
		Interval: 5 * time.Millisecond,
		Run:      func(_ context.Context) error { panic("boom") },
	})

	runner.Start(context.Background())
	runner.Start(context.Background())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, 5*time.Millisecond)

	runner.Stop()
	stopped := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, ticks.Load())

	runner.Stop()
}

func TestRunner_ImmediateTaskRunsAtStart(t *testing.T) {
	var ticks atomic.Int32

	runner := workers.NewRunner(metrics.NewNoop(), otelMocks.NewOtel(), workers.Task{
		Name:      "startup",
		Interval:  time.Hour,
		Immediate: true,
		Run: func(_ context.Context) error {
			ticks.Add(1)

			return nil
		},
	})

	runner.Start(context.Background())
	require.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, 5*time.Millisecond)
	runner.Stop()
}

func TestRecoveryTask(t *testing.T) {
	cfg := &config.Config{}

	tests := []struct {
		name      string
		setupMock func(webhooks *webhookMocks.MockWebhookService, locker *redisMocks.MockLocker)
		wantErr   bool
	}{
		{
			name: "re-enqueues stale jobs under the lock",
			setupMock: func(webhooks *webhookMocks.MockWebhookService, locker *redisMocks.MockLocker) {
				locker.EXPECT().Obtain(gomock.Any(), workers.TaskWebhookRecovery, cfg.WorkerLockTTL()).Return(func() {}, nil)
				webhooks.EXPECT().Recover(gomock.Any()).Return(3, nil)
			},
		},
		{
			name: "another replica recovers",
			setupMock: func(_ *webhookMocks.MockWebhookService, locker *redisMocks.MockLocker) {
				locker.EXPECT().Obtain(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, redis.ErrLockNotObtained)
			},
		},
		{
			name: "store failure is reported",
			setupMock: func(webhooks *webhookMocks.MockWebhookService, locker *redisMocks.MockLocker) {
				locker.EXPECT().Obtain(gomock.Any(), gomock.Any(), gomock.Any()).Return(func() {}, nil)
				webhooks.EXPECT().Recover(gomock.Any()).Return(0, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			webhooks := webhookMocks.NewMockWebhookService(ctrl)
			locker := redisMocks.NewMockLocker(ctrl)
			tt.setupMock(webhooks, locker)

			task := workers.NewRecoveryTask(webhooks, locker, cfg)
			assert.True(t, task.Immediate)
			assert.Equal(t, cfg.WebhookRecoveryInterval(), task.Interval)

			err := task.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestExpirySweeper(t *testing.T) {
	cfg := &config.Config{}

	t.Run("expires holds while holding the lock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bookings := bookingMocks.NewMockBookingService(ctrl)
		locker := redisMocks.NewMockLocker(ctrl)

		released := false
		locker.EXPECT().Obtain(gomock.Any(), workers.TaskHoldExpiry, cfg.WorkerLockTTL()).
			Return(func() { released = true }, nil)
		bookings.EXPECT().ExpireHolds(gomock.Any()).Return(int64(2), nil)

		task := workers.NewExpirySweeper(bookings, locker, cfg)
		assert.Equal(t, time.Minute, task.Interval)
		require.NoError(t, task.Run(context.Background()))
		assert.True(t, released)
	})

	t.Run("skips the tick when another replica holds the lock", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bookings := bookingMocks.NewMockBookingService(ctrl)
		locker := redisMocks.NewMockLocker(ctrl)

		locker.EXPECT().Obtain(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, redis.ErrLockNotObtained)

		require.NoError(t, workers.NewExpirySweeper(bookings, locker, cfg).Run(context.Background()))
	})

	t.Run("lock backend failure is reported", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bookings := bookingMocks.NewMockBookingService(ctrl)
		locker := redisMocks.NewMockLocker(ctrl)

		locker.EXPECT().Obtain(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))

		assert.Error(t, workers.NewExpirySweeper(bookings, locker, cfg).Run(context.Background()))
	})

	t.Run("runs unguarded without a locker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		bookings := bookingMocks.NewMockBookingService(ctrl)

		bookings.EXPECT().ExpireHolds(gomock.Any()).Return(int64(0), nil)

		require.NoError(t, workers.NewExpirySweeper(bookings, nil, cfg).Run(context.Background()))
	})
}

func TestSubscriptionLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	subscriptions := subscriptionMocks.NewMockSubscriptionService(ctrl)
	locker := redisMocks.NewMockLocker(ctrl)
	cfg := &config.Config{}

	locker.EXPECT().Obtain(gomock.Any(), workers.TaskSubscriptionRenewal, gomock.Any()).Return(func() {}, nil).Times(2)
	subscriptions.EXPECT().EnsureSubscriptions(gomock.Any()).Return(subscriptionDto.EnsureResult{Renewed: 1}, nil)
	subscriptions.EXPECT().EnsureSubscriptions(gomock.Any()).Return(subscriptionDto.EnsureResult{}, errors.New("db down"))

	task := workers.NewSubscriptionLoop(subscriptions, locker, cfg)
	require.NoError(t, task.Run(context.Background()))
	assert.Error(t, task.Run(context.Background()))
}

func TestWebhookWorker_Drain(t *testing.T) {
	cfg := &config.Config{}

	t.Run("processes every queued job", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queue.NewMemory()

		require.NoError(t, q.Enqueue(context.Background(), queue.Item{JobID: "job-1"}))
		require.NoError(t, q.Enqueue(context.Background(), queue.Item{JobID: "job-2"}))

		webhooks.EXPECT().Process(gomock.Any(), "job-1").Return(webhookDto.Outcome{Status: webhookModel.StatusDone}, nil)
		webhooks.EXPECT().Process(gomock.Any(), "job-2").Return(webhookDto.Outcome{Status: webhookModel.StatusFailed}, nil)

		worker := workers.NewWebhookWorker(q, webhooks, cfg)
		require.NoError(t, worker.Drain(context.Background()))
		assert.Equal(t, 0, q.Len())
		assert.Equal(t, 0, worker.PendingRetries())
	})

	t.Run("pending outcome is re-enqueued after its backoff", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queue.NewMemory()

		require.NoError(t, q.Enqueue(context.Background(), queue.Item{JobID: "job-1"}))
		webhooks.EXPECT().Process(gomock.Any(), "job-1").
			Return(webhookDto.Outcome{Status: webhookModel.StatusPending, RetryIn: 10 * time.Millisecond}, nil)

		worker := workers.NewWebhookWorker(q, webhooks, cfg)
		require.NoError(t, worker.Drain(context.Background()))

		require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, worker.PendingRetries())
	})

	t.Run("stop drops scheduled retries", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queue.NewMemory()

		require.NoError(t, q.Enqueue(context.Background(), queue.Item{JobID: "job-1"}))
		webhooks.EXPECT().Process(gomock.Any(), "job-1").Return(webhookDto.Outcome{}, errors.New("db down"))

		worker := workers.NewWebhookWorker(q, webhooks, cfg)
		require.NoError(t, worker.Drain(context.Background()))
		assert.Equal(t, 1, worker.PendingRetries())

		worker.Stop()
		assert.Equal(t, 0, worker.PendingRetries())
		assert.Equal(t, 0, q.Len())
	})

	t.Run("acks each delivery only after processing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queueMocks.NewMockQueue(ctrl)
		item := queue.Item{JobID: "job-1"}

		gomock.InOrder(
			q.EXPECT().Dequeue(gomock.Any()).Return(item, true, nil),
			webhooks.EXPECT().Process(gomock.Any(), "job-1").Return(webhookDto.Outcome{Status: webhookModel.StatusDone}, nil),
			q.EXPECT().Ack(gomock.Any(), item).Return(nil),
			q.EXPECT().Dequeue(gomock.Any()).Return(queue.Item{}, false, nil),
		)

		require.NoError(t, workers.NewWebhookWorker(q, webhooks, cfg).Drain(context.Background()))
	})

	t.Run("ack failure does not stop the drain", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queueMocks.NewMockQueue(ctrl)

		q.EXPECT().Dequeue(gomock.Any()).Return(queue.Item{JobID: "job-1"}, true, nil)
		q.EXPECT().Dequeue(gomock.Any()).Return(queue.Item{JobID: "job-2"}, true, nil)
		q.EXPECT().Dequeue(gomock.Any()).Return(queue.Item{}, false, nil)
		webhooks.EXPECT().Process(gomock.Any(), gomock.Any()).Return(webhookDto.Outcome{Status: webhookModel.StatusDone}, nil).Times(2)
		q.EXPECT().Ack(gomock.Any(), gomock.Any()).Return(errors.New("commit failed")).Times(2)

		require.NoError(t, workers.NewWebhookWorker(q, webhooks, cfg).Drain(context.Background()))
	})

	t.Run("dequeue failure is reported", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queueMocks.NewMockQueue(ctrl)

		q.EXPECT().Dequeue(gomock.Any()).Return(queue.Item{}, false, errors.New("broker down"))

		worker := workers.NewWebhookWorker(q, webhooks, cfg)
		assert.Error(t, worker.Drain(context.Background()))
	})

	t.Run("a drain already in progress is not re-entered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		webhooks := webhookMocks.NewMockWebhookService(ctrl)
		q := queue.NewMemory()

		require.NoError(t, q.Enqueue(context.Background(), queue.Item{JobID: "job-1"}))

		var worker *workers.WebhookWorker

		webhooks.EXPECT().Process(gomock.Any(), "job-1").
			DoAndReturn(func(ctx context.Context, _ string) (webhookDto.Outcome, error) {
				require.NoError(t, q.Enqueue(ctx, queue.Item{JobID: "job-2"}))
				// nested drain returns immediately and leaves job-2 for the outer loop
				require.NoError(t, worker.Drain(ctx))
				assert.Equal(t, 1, q.Len())

				return webhookDto.Outcome{Status: webhookModel.StatusDone}, nil
			})
		webhooks.EXPECT().Process(gomock.Any(), "job-2").Return(webhookDto.Outcome{Status: webhookModel.StatusDone}, nil)

		worker = workers.NewWebhookWorker(q, webhooks, cfg)
		require.NoError(t, worker.Drain(context.Background()))
	})
}
