// Package web provides the HTTP server and JSON handlers for the NCM lookup
// API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/ncmlookup/internal/auth"
	"github.com/JonMunkholm/ncmlookup/internal/config"
	"github.com/JonMunkholm/ncmlookup/internal/core"
	"github.com/JonMunkholm/ncmlookup/internal/ncm"
	"github.com/JonMunkholm/ncmlookup/internal/web/middleware"
)

// Server is the HTTP server for the lookup API.
type Server struct {
	service  *core.Service
	items    *ncm.Cache
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, items *ncm.Cache, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		items:    items,
		cfg:      cfg,
		router:   chi.NewRouter(),
		validate: newValidator(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
	s.router.Use(requestMetadata)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	requireAuth := middleware.RequireAuth(s.service, respondError)
	adminOnly := middleware.RequireRole(respondError, auth.RoleAdministrator)

	// Credential endpoints get a tighter budget than the rest of the API.
	authLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		authLimit = s.newRateLimiter(s.cfg.Rate.AuthLimit, time.Minute).middleware
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/health/items", s.handleItemsHealth)

	s.router.Route("/itens", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/search", s.handleSearchItems)
		r.Get("/details", s.handleItemDetails)
		r.With(adminOnly).Post("/reload", s.handleReloadItems)
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.With(authLimit).Post("/register", s.handleRegister)
		r.With(authLimit).Post("/login", s.handleLogin)
		r.With(authLimit).Post("/forgot-password", s.handleForgotPassword)
		r.With(authLimit).Post("/reset-password", s.handleResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.With(adminOnly).Get("/admin-only", s.handleAdminOnly)
		})
	})

	s.router.Route("/users", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/find_all_users", s.handleListUsers)
		r.Patch("/{id}/status", s.handleUserStatus)
		r.Patch("/{id}/authenticated_status", s.handleUserAuthenticatedStatus)
		r.Patch("/{id}/company", s.handleUserCompany)
	})

	s.router.Route("/company", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/register", s.handleRegisterCompany)
		r.Get("/find_all_company", s.handleListCompanies)
		r.Get("/find_company_by_company_id/{id}", s.handleGetCompany)
	})

	s.router.Route("/contract", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/sign", s.handleSignContract)
		r.Get("/is_signed", s.handleIsSigned)
	})

	s.router.Route("/code", func(r chi.Router) {
		r.Post("/validate", s.handleValidateCode)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.With(adminOnly).Post("/generate", s.handleGenerateCode)
			r.Post("/attach", s.handleAttachCode)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondErrorJSON(w, core.UserMessage{Message: "Not Found", Code: "HTTP404"}, http.StatusNotFound)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondErrorJSON(w, core.UserMessage{Message: "Method Not Allowed", Code: "HTTP405"}, http.StatusMethodNotAllowed)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// JSON only, nothing to load
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter owned by s, stopped on Shutdown.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	s.limiters = append(s.limiters, rl)
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	// Check if we have tokens left
	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// TrustedRealIP has already resolved proxied addresses.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(middleware.ClientIP(r)) {
			respondError(w, r, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
