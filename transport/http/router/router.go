package router

import (
	"meetflow/internal/handlers/operator"
	"meetflow/internal/handlers/public"
	"meetflow/internal/handlers/webhook"
	"meetflow/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Public   public.Handler
	Operator operator.Handler
	Webhook  webhook.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Auth           middleware.Auth
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Public.Router(routerGroup, r.Auth)
		r.DomainHandlers.Operator.Router(routerGroup, r.Auth)
		r.DomainHandlers.Webhook.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, auth middleware.Auth) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Auth:           auth,
	}
}
