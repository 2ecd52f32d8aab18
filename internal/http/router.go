package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Madofly35/GestLoc/internal/http/auth"
	"github.com/Madofly35/GestLoc/internal/http/document"
	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/http/lease"
	"github.com/Madofly35/GestLoc/internal/http/payment"
	"github.com/Madofly35/GestLoc/internal/http/property"
	"github.com/Madofly35/GestLoc/internal/http/receipt"
	"github.com/Madofly35/GestLoc/internal/http/storage"
	"github.com/Madofly35/GestLoc/internal/http/tenant"
	"github.com/Madofly35/GestLoc/internal/http/verify"
	"github.com/Madofly35/GestLoc/internal/metrics"
)

type Options struct {
	AllowedOrigins []string
	JWTSecret      []byte
	Timeout        time.Duration
	// Gatherer backs /metrics. Nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
}

type Handlers struct {
	Properties *property.Handler
	Tenants    *tenant.Handler
	Leases     *lease.Handler
	Payments   *payment.Handler
	Receipts   *receipt.Handler
	Verify     *verify.Handler
	Documents  *document.Handler
	// Storage is only set for the filesystem blob driver.
	Storage *storage.Handler
}

type pingResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func ping(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, pingResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

func New(opts Options, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if h.Storage != nil {
		router.Route("/storage", h.Storage.Routes)
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Get("/ping", ping)
		r.Route("/verify", h.Verify.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(opts.JWTSecret))

			r.Route("/properties", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Properties.Routes(r)
			})

			r.Route("/rooms", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Properties.RoomRoutes(r)
			})

			r.Route("/tenants", func(r chi.Router) {
				r.With(middleware.AllowContentType("application/json")).Group(h.Tenants.Routes)
				r.Route("/{id}/documents", h.Documents.TenantRoutes)
			})

			r.Route("/leases", func(r chi.Router) {
				r.With(middleware.AllowContentType("application/json")).Group(h.Leases.Routes)
				r.Route("/{id}/payments", h.Payments.LeaseRoutes)
			})

			r.Route("/payments", h.Payments.Routes)
			r.Route("/receipts", h.Receipts.Routes)
			r.Route("/documents", h.Documents.Routes)
		})
	})

	return router
}
