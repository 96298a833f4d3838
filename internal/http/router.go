// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/autoexport/go-export-backend/internal/auth"
	"github.com/autoexport/go-export-backend/internal/config"
	"github.com/autoexport/go-export-backend/internal/http/handlers"
	"github.com/autoexport/go-export-backend/internal/http/middleware"
	"github.com/autoexport/go-export-backend/internal/notify"
	"github.com/autoexport/go-export-backend/internal/repo"
	"github.com/autoexport/go-export-backend/internal/services"
	"github.com/autoexport/go-export-backend/internal/storage"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, static upload serving, health and
// metrics endpoints, and then mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized to admit the largest allowed upload)
//  6. Gzip compression for JSON payloads
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay; contact form only)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. Contact submissions carry names,
	// emails, and phone numbers; nothing from a body is ever logged, and
	// query/header PII is scrubbed.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderIdempotencyKey,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit, sized so video uploads still fit.
	r.Use(limitBody(cfg.Upload.MaxVideoBytes + (1 << 20)))

	// 6) Compress JSON responses; stored files are already compressed formats.
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{cfg.Upload.PublicPath})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation for the public contact form (before rate
	// limiting so replays skip the bucket).
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, scope, path, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, scope, path, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP. Installed on the public
	// contact form only: visit recording must always answer success and the
	// login endpoint is not throttled.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	rateLimited := rl.Handler()

	// 10) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Uploaded files are served directly from disk under the public prefix.
	r.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	// Dependency injection: services ← db/storage/notify
	var remote storage.RemoteStore
	if cfg.Upload.RemoteEndpoint != "" {
		remote = &storage.HTTPRemoteStore{
			Endpoint: cfg.Upload.RemoteEndpoint,
			APIKey:   cfg.Upload.RemoteAPIKey,
		}
	}
	files := &storage.Store{
		Root:       cfg.Upload.Dir,
		PublicPath: cfg.Upload.PublicPath,
		Remote:     remote,
	}
	activity := services.NewActivityRecorder(db)

	vehicleSvc := &services.VehicleService{DB: db, Files: files, Activity: activity}
	contactSvc := &services.ContactService{DB: db, Activity: activity, IdempotencyTTL: cfg.IdempotencyTTL}
	visitorSvc := &services.VisitorService{
		DB:           db,
		WatchedPaths: cfg.WatchedPaths,
		Notifier:     notifierOrNil(cfg.SMTP),
	}
	siteSvc := &services.SiteConfigService{DB: db, Activity: activity}
	mediaSvc := &services.MediaService{DB: db, Files: files, Activity: activity}

	h := handlers.New(vehicleSvc, contactSvc, visitorSvc, siteSvc, mediaSvc, cfg.Auth, cfg.Upload)

	verify := func(token string) (*auth.Claims, error) { return auth.ParseToken(cfg.Auth, token) }
	requireAdmin := []gin.HandlerFunc{middleware.RequireAuth(verify), middleware.RequireAdmin()}

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Admin auth + site configuration
		api.POST("/admin/login", h.Login)
		admin := api.Group("/admin", requireAdmin...)
		{
			admin.GET("/site-config", h.GetSiteConfig)
			admin.PUT("/site-config", h.UpdateSiteConfig)
			admin.POST("/upload-video", h.UploadSiteVideo)
		}

		// Vehicles
		api.GET("/vehicles", h.ListVehicles)
		api.GET("/vehicles/featured", h.ListFeaturedVehicles)
		api.GET("/vehicles/:id", h.GetVehicle)
		vehiclesAdmin := api.Group("/vehicles", requireAdmin...)
		{
			vehiclesAdmin.POST("", h.CreateVehicle)
			vehiclesAdmin.PUT("/:id", h.UpdateVehicle)
			vehiclesAdmin.DELETE("/:id", h.DeleteVehicle)
			vehiclesAdmin.POST("/upload/:id", h.UploadVehicleImages)
		}

		// Contact messages
		api.POST("/contact", rateLimited, h.SubmitContact)
		contactAdmin := api.Group("/contact", requireAdmin...)
		{
			contactAdmin.GET("", h.ListContacts)
			contactAdmin.GET("/:id", h.GetContact)
			contactAdmin.PUT("/:id/respond", h.RespondContact)
			contactAdmin.DELETE("/:id", h.DeleteContact)
		}

		// Visitors
		api.POST("/visitors/record", h.RecordVisit)
		api.GET("/visitors/stats", append(requireAdmin, h.VisitorStats)...)

		// Media assets
		mediaAdmin := api.Group("/media", requireAdmin...)
		{
			mediaAdmin.GET("", h.ListMedia)
			mediaAdmin.POST("", h.UploadMedia)
			mediaAdmin.DELETE("/:id", h.DeleteMedia)
		}
	}
}

// notifierOrNil builds the SMTP notifier, returning a nil interface when the
// mailer is disabled so VisitorService skips notifications entirely.
func notifierOrNil(cfg config.SMTPConfig) notify.Notifier {
	if m := notify.NewSMTPMailer(cfg); m != nil {
		return m
	}
	return nil
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
