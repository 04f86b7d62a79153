package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bodhivana/storefront/internal/auth/domain"
	"github.com/bodhivana/storefront/internal/auth/service"
	"github.com/bodhivana/storefront/internal/auth/store"
	"github.com/bodhivana/storefront/pkg/httpx"
	"github.com/bodhivana/storefront/pkg/jwtx"
	"github.com/bodhivana/storefront/pkg/slogx"
)

// Limiters groups the rate limit tiers the router applies per route.
// The app layer decides whether they are Redis-backed or in-process.
type Limiters struct {
	Strict   httpx.Limiter
	Moderate httpx.Limiter
	Lenient  httpx.Limiter
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier      jwtx.Verifier
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	limiters      Limiters
	webhookSecret []byte

	store        store.Store
	AuthService  *service.AuthService
	TokenService *service.TokenService
	UserService  *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	limiters Limiters,
	webhookSecret []byte,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		verifier:      verifier,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		limiters:      limiters,
		webhookSecret: webhookSecret,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerWebhooks()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /api/signup - strict rate limit by IP (account creation)
	r.Mux.Handle("POST /api/signup",
		httpx.Chain(&SignupHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiters.Strict),
		),
	)

	// POST /api/signin - strict rate limit by IP (brute force prevention)
	r.Mux.Handle("POST /api/signin",
		httpx.Chain(&SigninHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiters.Strict),
		),
	)

	// POST /api/verify-otp - strict rate limit by IP (prevent code guessing)
	r.Mux.Handle("POST /api/verify-otp",
		httpx.Chain(&VerifyOTPHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiters.Strict),
		),
	)

	// POST /api/resend-otp - strict rate limit by IP (email sending)
	r.Mux.Handle("POST /api/resend-otp",
		httpx.Chain(&ResendOTPHandler{AuthService: r.AuthService},
			httpx.RateLimitByIP(r.limiters.Strict),
		),
	)

	// POST /api/refresh-token - moderate rate limit by IP
	r.Mux.Handle("POST /api/refresh-token",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(r.limiters.Moderate),
		),
	)

	// POST /api/signout - moderate rate limit by IP
	r.Mux.Handle("POST /api/signout",
		httpx.Chain(&SignoutHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(r.limiters.Moderate),
		),
	)
}

func (r *Router) registerAccount() {
	twoFactor := &TwoFactorHandler{AuthService: r.AuthService}

	// POST /api/enable-2fa - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /api/enable-2fa",
		httpx.Chain(http.HandlerFunc(twoFactor.HandleEnable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.limiters.Moderate),
		),
	)

	// POST /api/disable-2fa - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /api/disable-2fa",
		httpx.Chain(http.HandlerFunc(twoFactor.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.limiters.Moderate),
		),
	)

	// GET /api/me - authenticated, lenient rate limit by user
	r.Mux.Handle("GET /api/me",
		httpx.Chain(&MeHandler{UserService: r.UserService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(r.limiters.Lenient),
		),
	)

	// GET /api/users - admin only, moderate rate limit by user
	r.Mux.Handle("GET /api/users",
		httpx.Chain(&UsersHandler{UserService: r.UserService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(r.limiters.Moderate),
		),
	)
}

func (r *Router) registerWebhooks() {
	// POST /api/webhooks/payment - signature-checked, lenient limit by IP
	r.Mux.Handle("POST /api/webhooks/payment",
		httpx.Chain(&PaymentWebhookHandler{Secret: r.webhookSecret},
			httpx.RateLimitByIP(r.limiters.Lenient),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limiters.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limiters.Lenient),
		),
	)
}
