package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/product-catalog-service/internal/health"
	"github.com/sandeepkv93/product-catalog-service/internal/http/handler"
	"github.com/sandeepkv93/product-catalog-service/internal/http/middleware"
	"github.com/sandeepkv93/product-catalog-service/internal/http/response"
)

type Dependencies struct {
	CategoryHandler    *handler.CategoryHandler
	ProductTypeHandler *handler.ProductTypeHandler
	ProductHandler     *handler.ProductHandler
	CORSOrigins        []string
	APIRateLimitRPM    int
	WriteRateLimitRPM  int
	GlobalRateLimiter  GlobalRateLimiterFunc
	WriteRateLimiter   WriteRateLimiterFunc
	Idempotency        IdempotencyMiddlewareFactory
	Readiness          *health.ProbeRunner
	EnableOTelHTTP     bool
	MaxUploadBytes     int64
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type WriteRateLimiterFunc func(http.Handler) http.Handler
type IdempotencyMiddlewareFactory func(scope string) func(http.Handler) http.Handler

// Idempotency scopes partition replay records per endpoint so a key reused
// across endpoints cannot replay the wrong response.
const (
	IdempotencyScopeCategoryCreate = "catalog.category.create"
	IdempotencyScopeTypeCreate     = "catalog.type.create"
	IdempotencyScopeProductCreate  = "catalog.product.create"
)

const defaultMaxUploadBytes = 32 << 20

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.RequestMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	// Accept the trailing-slash form of every endpoint, e.g. /category-list/.
	r.Use(chimiddleware.StripSlashes)
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	writeLimiter := dep.WriteRateLimiter
	if writeLimiter == nil {
		writeLimiter = middleware.NewRateLimiter(dep.WriteRateLimitRPM, time.Minute).Middleware()
	}

	maxUpload := dep.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/product", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(1 << 20))
			r.Get("/category-list", dep.CategoryHandler.List)
			r.Get("/type-list", dep.ProductTypeHandler.List)
			r.Get("/product-list", dep.ProductHandler.List)

			categoryChain := []func(http.Handler) http.Handler{writeLimiter}
			if dep.Idempotency != nil {
				categoryChain = append(categoryChain, dep.Idempotency(IdempotencyScopeCategoryCreate))
			}
			r.With(categoryChain...).Post("/category-create", dep.CategoryHandler.Create)

			typeChain := []func(http.Handler) http.Handler{writeLimiter}
			if dep.Idempotency != nil {
				typeChain = append(typeChain, dep.Idempotency(IdempotencyScopeTypeCreate))
			}
			r.With(typeChain...).Post("/type-create", dep.ProductTypeHandler.Create)
		})

		// Product creation accepts multipart image uploads, so it gets a
		// higher body limit than the JSON endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(maxUpload))
			productChain := []func(http.Handler) http.Handler{writeLimiter}
			if dep.Idempotency != nil {
				productChain = append(productChain, dep.Idempotency(IdempotencyScopeProductCreate))
			}
			r.With(productChain...).Post("/product-create", dep.ProductHandler.Create)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
