package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Webhook=MockWebhookService

import (
	"context"
	"fmt"
	"meetflow/config"
	"meetflow/infras/metrics"
	"meetflow/infras/otel"
	"meetflow/infras/queue"
	"meetflow/infras/s3"
	auditModel "meetflow/internal/domains/audit/model"
	auditService "meetflow/internal/domains/audit/service"
	reconciliationService "meetflow/internal/domains/reconciliation/service"
	subscriptionService "meetflow/internal/domains/subscription/service"
	"meetflow/internal/domains/webhook/model"
	"meetflow/internal/domains/webhook/model/dto"
	"meetflow/internal/domains/webhook/repository"
	"meetflow/shared"
	"meetflow/shared/constant"
	gDto "meetflow/shared/dto"
	"meetflow/shared/logger"
	gModel "meetflow/shared/model"
	gRepo "meetflow/shared/repository"
	"meetflow/shared/timezone"
	"meetflow/shared/validator"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	actorWebhookWorker  = "webhook-worker"
	archiveContentType  = constant.ContentTypeJSON
	maxLastErrorLength  = 2000
	baseBackoff         = time.Second
	maxBackoffExponent  = 30
	outcomeSkipped      = "skipped"
	archiveFileTemplate = "%s-%s.json"
)

type Webhook interface {
	// Ingest turns a notification batch into pending jobs. raw is archived as received.
	Ingest(ctx context.Context, batch dto.NotificationBatch, raw []byte) (dto.IngestResult, error)
	// Process applies one job. Errors are store failures only; reconciliation
	// failures are recorded on the job and reported through the outcome.
	Process(ctx context.Context, jobID string) (dto.Outcome, error)
	// Recover hands in-flight jobs that stopped moving back to the queue:
	// lost enqueues, retries dropped on shutdown and workers killed mid-job.
	Recover(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo          repository.Job
	subscriptions subscriptionService.Subscription
	reconciler    reconciliationService.Reconciler
	recorder      auditService.Recorder
	queue         queue.Queue
	archive       s3.S3
	metrics       *metrics.Metrics
	cfg           *config.Config
	otel          otel.Otel
}

func New(
	repo repository.Job,
	subscriptions subscriptionService.Subscription,
	reconciler reconciliationService.Reconciler,
	recorder auditService.Recorder,
	queue queue.Queue,
	archive s3.S3,
	metrics *metrics.Metrics,
	cfg *config.Config,
	otel otel.Otel,
) Webhook {
	return &serviceImpl{
		repo:          repo,
		subscriptions: subscriptions,
		reconciler:    reconciler,
		recorder:      recorder,
		queue:         queue,
		archive:       archive,
		metrics:       metrics,
		cfg:           cfg,
		otel:          otel,
	}
}

func (s *serviceImpl) Ingest(ctx context.Context, batch dto.NotificationBatch, raw []byte) (res dto.IngestResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".webhook.Ingest")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	receivedAt := timezone.Now().UTC()

	s.archiveBatch(ctx, raw, receivedAt)

	for _, notification := range batch.Value {
		result, err := s.ingestOne(ctx, notification, receivedAt)
		if err != nil {
			return res, err
		}

		s.metrics.RecordNotification(result)

		switch result {
		case metrics.NotificationAccepted:
			res.Accepted++
		case metrics.NotificationDuplicate:
			res.Duplicates++
		default:
			res.Dropped++
		}
	}

	return res, nil
}

func (s *serviceImpl) ingestOne(ctx context.Context, notification dto.Notification, receivedAt time.Time) (string, error) {
	changeType := notification.NormalizedChangeType()
	if notification.SubscriptionID == "" || changeType == "" {
		return metrics.NotificationDropped, nil
	}

	resourceID := notification.ResourceID()
	if resourceID == "" {
		return metrics.NotificationDropped, nil
	}

	if s.cfg.Webhook.ClientState != "" && notification.ClientState != s.cfg.Webhook.ClientState {
		log.Warn().Str("subscription_id", notification.SubscriptionID).Msg("notification with mismatching client state")

		return metrics.NotificationInvalid, nil
	}

	subscription, err := s.subscriptions.Resolve(ctx, notification.SubscriptionID)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	if subscription.ID == "" {
		log.Warn().Str("subscription_id", notification.SubscriptionID).Msg("notification for unknown subscription")

		return metrics.NotificationDropped, nil
	}

	payload := dto.JobPayload{
		TenantID:       subscription.TenantID,
		SalespersonID:  subscription.SalespersonID,
		SubscriptionID: notification.SubscriptionID,
		ChangeType:     changeType,
		ResourceID:     resourceID,
		ReceivedAt:     receivedAt,
	}

	if err = validator.ValidateStruct(&payload); err != nil {
		log.Warn().Err(err).Str("subscription_id", notification.SubscriptionID).Msg("invalid notification payload")

		return metrics.NotificationInvalid, nil
	}

	duplicate, err := s.repo.Exist(ctx, dedupFilter(notification.ID, payload))
	if err != nil {
		log.Error().Err(err).Msg("failed to check webhook job")

		return "", fmt.Errorf("failed to check webhook job: %w", err)
	}

	if duplicate {
		return metrics.NotificationDuplicate, nil
	}

	job := model.Job{
		ID:             uuid.NewString(),
		TenantID:       payload.TenantID,
		SalespersonID:  payload.SalespersonID,
		SubscriptionID: payload.SubscriptionID,
		ChangeType:     payload.ChangeType,
		ResourceID:     payload.ResourceID,
		Status:         model.StatusPending,
		ReceivedAt:     receivedAt,
		Metadata:       gModel.NewMetadata(receivedAt),
	}

	if notification.ID != "" {
		job.NotificationID = &notification.ID
	}

	if err = s.repo.Insert(ctx, job); err != nil {
		if gRepo.IsConstraintViolation(err) {
			return metrics.NotificationDuplicate, nil
		}

		log.Error().Err(err).Msg("failed to insert webhook job")

		return "", fmt.Errorf("failed to insert webhook job: %w", err)
	}

	// the job row is durable; a lost enqueue only delays it until Recover picks it up
	err = s.queue.Enqueue(ctx, queue.Item{JobID: job.ID})
	logger.BestEffort(err, "enqueue webhook job", map[string]string{"job_id": job.ID})

	return metrics.NotificationAccepted, nil
}

// dedupFilter keys on the provider notification id when there is one, otherwise on
// the in-flight (subscription, resource, change type) triple.
func dedupFilter(notificationID string, payload dto.JobPayload) gDto.FilterGroup {
	if notificationID != "" {
		return shared.FilterByID(notificationID, model.FieldNotificationID, model.TableName)
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldSubscriptionID, Value: payload.SubscriptionID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldResourceID, Value: payload.ResourceID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldChangeType, Value: payload.ChangeType, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldNotificationID, Operator: gDto.FilterIsNull, Table: model.TableName},
			gDto.Filter{Field: model.FieldStatus, Value: model.InFlightStatuses(), Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}
}

func (s *serviceImpl) archiveBatch(ctx context.Context, raw []byte, receivedAt time.Time) {
	archive := s.cfg.Webhook.Archive
	if !archive.Enable || s.archive == nil || len(raw) == 0 {
		return
	}

	fileName := fmt.Sprintf(archiveFileTemplate, receivedAt.Format("20060102T150405.000000000Z"), uuid.NewString())

	_, err := s.archive.UploadFileBytes(context.WithoutCancel(ctx), archive.Bucket, archive.Directory, fileName, archiveContentType, raw)
	logger.BestEffort(err, "archive webhook payload", map[string]string{"file_name": fileName})
}

func (s *serviceImpl) Process(ctx context.Context, jobID string) (res dto.Outcome, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".webhook.Process")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	job, err := s.repo.Get(ctx, shared.FilterByID(jobID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("failed to get webhook job")

		return res, fmt.Errorf("failed to get webhook job: %w", err)
	}

	if job.ID == "" {
		log.Warn().Str("job_id", jobID).Msg("queued webhook job not found")

		return dto.Outcome{Status: outcomeSkipped}, nil
	}

	// duplicate delivery of a finished job
	if job.Terminal() {
		return dto.Outcome{Status: outcomeSkipped}, nil
	}

	job.Attempts++

	err = s.transition(ctx, job, model.StatusProcessing, nil)
	if err != nil {
		return res, err
	}

	reconcileErr := s.reconciler.Reconcile(ctx, job)
	if reconcileErr == nil {
		if err = s.transition(ctx, job, model.StatusDone, nil); err != nil {
			return res, err
		}

		s.metrics.RecordJob(metrics.JobDone)

		return dto.Outcome{Status: model.StatusDone}, nil
	}

	message := shared.TruncateText(reconcileErr.Error(), maxLastErrorLength)

	if job.Attempts >= s.cfg.WebhookMaxAttempts() {
		if err = s.transition(ctx, job, model.StatusFailed, &message); err != nil {
			return res, err
		}

		s.metrics.RecordJob(metrics.JobFailed)
		log.Error().Err(reconcileErr).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("webhook job failed permanently")

		return dto.Outcome{Status: model.StatusFailed}, nil
	}

	if err = s.transition(ctx, job, model.StatusPending, &message); err != nil {
		return res, err
	}

	s.metrics.RecordJob(metrics.JobRetried)

	retryIn := Backoff(job.Attempts, s.cfg.WebhookMaxBackoff())
	log.Warn().Err(reconcileErr).Str("job_id", job.ID).Int("attempts", job.Attempts).Dur("retry_in", retryIn).Msg("webhook job will be retried")

	return dto.Outcome{Status: model.StatusPending, RetryIn: retryIn}, nil
}

func (s *serviceImpl) Recover(ctx context.Context) (recovered int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".webhook.Recover")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	now := timezone.Now().UTC()
	cutoff := now.Add(-s.cfg.WebhookStaleAfter())

	jobs, err := s.repo.ListStale(ctx, cutoff, s.cfg.WebhookRecoveryBatch())
	if err != nil {
		log.Error().Err(err).Msg("failed to list stale webhook jobs")

		return 0, fmt.Errorf("failed to list stale webhook jobs: %w", err)
	}

	for _, job := range jobs {
		// touching updated_at claims the job so another replica or the next pass skips it
		filter := model.StaleFilter(cutoff)
		filter.Filters = append(filter.Filters, gDto.Filter{Field: model.FieldID, Value: job.ID, Operator: gDto.FilterOperatorEq, Table: model.TableName})

		affected, err := s.repo.Update(ctx, map[string]any{model.FieldUpdatedAt: now}, filter)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to claim stale webhook job")

			return recovered, fmt.Errorf("failed to claim stale webhook job: %w", err)
		}

		if affected == 0 {
			continue
		}

		if err = s.queue.Enqueue(ctx, queue.Item{JobID: job.ID}); err != nil {
			// still stale after the next window
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to re-enqueue stale webhook job")

			continue
		}

		log.Info().Str("job_id", job.ID).Str("status", job.Status).Int("attempts", job.Attempts).Msg("stale webhook job re-enqueued")

		recovered++
	}

	return recovered, nil
}

// transition persists the job status with the current attempt count and audits it.
// The write is detached so a worker shutdown cannot strand the job in processing.
func (s *serviceImpl) transition(ctx context.Context, job model.Job, status string, lastError *string) error {
	ctx = context.WithoutCancel(ctx)

	_, err := s.repo.Update(ctx, map[string]any{
		model.FieldStatus:    status,
		model.FieldAttempts:  job.Attempts,
		model.FieldLastError: lastError,
		model.FieldUpdatedAt: timezone.Now().UTC(),
	}, shared.FilterByID(job.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("status", status).Msg("failed to update webhook job")

		return fmt.Errorf("failed to update webhook job: %w", err)
	}

	meta := map[string]any{"status": status, "attempts": job.Attempts}
	if lastError != nil {
		meta["error"] = *lastError
	}

	s.recorder.Audit(ctx, auditModel.Entry{
		TenantID:   job.TenantID,
		ActorType:  constant.ActorTypeSystem,
		ActorID:    actorWebhookWorker,
		Action:     auditModel.ActionWebhookJobStatus,
		EntityType: auditModel.EntityWebhookJob,
		EntityID:   job.ID,
		Meta:       meta,
	})

	return nil
}

// Backoff is min(limit, 1s * 2^(attempts-1)).
func Backoff(attempts int, limit time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}

	if attempts-1 >= maxBackoffExponent {
		return limit
	}

	delay := baseBackoff << (attempts - 1)
	if delay > limit {
		return limit
	}

	return delay
}
