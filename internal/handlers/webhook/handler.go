package webhook

import (
	"encoding/json"
	"fmt"
	"io"
	"meetflow/infras/otel"
	"meetflow/internal/domains/webhook/model/dto"
	"meetflow/internal/domains/webhook/service"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"meetflow/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxNotificationBytes = 1 << 20

type Handler struct {
	service service.Webhook
	otel    otel.Otel
}

func New(service service.Webhook, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/webhooks", func(routerGroup chi.Router) {
		routerGroup.Post("/graph", handler.ReceiveGraph)
	})
}

// ReceiveGraph accepts calendar change notifications.
// @Summary Receive calendar notifications
// @Description Echoes validationToken during subscription handshake, otherwise queues each notification.
// @Tags Webhook
// @Accept json
// @Produce json
// @Param validationToken query string false "Subscription validation token"
// @Param request body dto.NotificationBatch false "Notification batch"
// @Success 200 {string} string "Validation token"
// @Success 202 {object} response.Data[dto.IngestResult]
// @Failure 400 {object} response.Error
// @Router /v1/webhooks/graph [post]
func (handler *Handler) ReceiveGraph(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReceiveGraph")
	defer scope.End()

	if token := r.URL.Query().Get(constant.RequestParamValidation); token != "" {
		scope.AddEvent("subscription validation handshake")
		response.WithText(w, http.StatusOK, token)

		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxNotificationBytes))
	if err != nil {
		err = failure.BadRequest(fmt.Errorf("failed to read notification body: %w", err))
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	batch := dto.NotificationBatch{}

	if err := json.Unmarshal(raw, &batch); err != nil {
		err = failure.BadRequest(fmt.Errorf("failed to decode notification body: %w", err))
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	res, err := handler.service.Ingest(ctx, batch, raw)
	if err != nil {
		// a 5xx makes the provider redeliver the batch
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to ingest notifications")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusAccepted, res)
}
