package middleware

import (
	"context"
	"crypto/subtle"
	"meetflow/config"
	"meetflow/infras/otel"
	tenantService "meetflow/internal/domains/tenant/service"
	"meetflow/shared/constant"
	"meetflow/shared/failure"
	"meetflow/shared/validator"
	"meetflow/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Auth guards the operator and public surfaces.
type Auth interface {
	// APIKey admits internal callers presenting the shared X-API-Key.
	APIKey(http.Handler) http.Handler
	// InternalTenant scopes an internal request to the tenant named in X-Tenant-Id.
	InternalTenant(http.Handler) http.Handler
	// PublicTenant resolves the {tenantSlug} path segment to an active tenant.
	PublicTenant(http.Handler) http.Handler
}

type authImpl struct {
	tenants tenantService.Tenant
	otel    otel.Otel
	cfg     *config.Config
}

func NewAuthMiddleware(tenants tenantService.Tenant, otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		tenants: tenants,
		otel:    otel,
		cfg:     cfg,
	}
}

func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if m.cfg.App.APIKey == "" || apiKey == "" ||
			subtle.ConstantTimeCompare([]byte(apiKey), []byte(m.cfg.App.APIKey)) != 1 {
			err := failure.Unauthorized("invalid api key")
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		scope.SetAttribute("http.source", "internal")

		next.ServeHTTP(writer, request)
	})
}

func (m *authImpl) InternalTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "internal_tenant.middleware")
		defer scope.End()

		tenantID := request.Header.Get(constant.RequestHeaderTenantID)
		if validator.ValidateVar(tenantID, "required,uuid") != nil {
			err := failure.BadRequestFromString("X-Tenant-Id header must be a tenant id")
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		tenant, err := m.tenants.Get(ctx, tenantID)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		ctx = context.WithValue(request.Context(), constant.ContextKeyTenantID, tenant.ID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authImpl) PublicTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "public_tenant.middleware")
		defer scope.End()

		slug := chi.URLParam(request, constant.RequestParamTenantSlug)

		tenant, err := m.tenants.ResolveBySlug(ctx, slug)
		if err != nil {
			scope.TraceError(err)
			response.WithError(writer, err)

			return
		}

		ctx = context.WithValue(request.Context(), constant.ContextKeyTenantID, tenant.ID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// TenantID returns the tenant the request was scoped to by PublicTenant or InternalTenant.
func TenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(constant.ContextKeyTenantID).(string)

	return tenantID
}
