package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/bucket/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionValidator  middleware.SessionValidator
	AuthFailures      middleware.AuthFailureRecorder
	RequestRecorder   middleware.RequestRecorder
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// ハンドラー
	Auth          AuthUseCases
	AuthConfig    AuthHandlerConfig
	Users         UserUseCases
	Goals         GoalUseCases
	Updates       ProgressUpdateUseCases
	Notifications NotificationUseCases
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Recovery → SecurityHeaders → CORS → CSRF
//	  認証エンドポイント: RateLimit(Auth)
//	  認証が必要なルート: Session → RateLimit(General)
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger, deps.RequestRecorder))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.Auth, deps.AuthConfig)
	userHandler := NewUserHandler(deps.Users)
	goalHandler := NewGoalHandler(deps.Goals)
	updateHandler := NewProgressUpdateHandler(deps.Updates)
	notificationHandler := NewNotificationHandler(deps.Notifications)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)
		r.Get("/username-availability", authHandler.UsernameAvailability)

		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/password/forgot", authHandler.ForgotPassword)
			r.Post("/password/reset", authHandler.ResetPassword)
		})

		r.With(
			middleware.NewSessionMiddleware(deps.SessionValidator, deps.AuthFailures),
		).Post("/signout", authHandler.SignOut)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionValidator, deps.AuthFailures))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ログインユーザー
		r.Get("/me", userHandler.Me)
		r.Put("/me", userHandler.UpdateMe)
		r.Get("/me/goals", goalHandler.OwnGoals)

		// ユーザー
		r.Route("/users", func(r chi.Router) {
			r.Get("/suggestions", userHandler.Suggestions)
			r.Get("/search", userHandler.Search)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Post("/follow", userHandler.Follow)
				r.Get("/followers", userHandler.Followers)
				r.Get("/following", userHandler.Following)
				r.Get("/goals", goalHandler.UserGoals)
			})
		})

		// 目標と進捗
		r.Post("/goals", goalHandler.CreateGoal)
		r.Route("/goals/{id}", func(r chi.Router) {
			r.Delete("/", goalHandler.DeleteGoal)
			r.Get("/updates", updateHandler.ListByGoal)
			r.Post("/updates", updateHandler.CreateUpdate)
		})
		r.Get("/feed", updateHandler.Feed)
		r.Post("/updates/{id}/like", updateHandler.Like)

		// 通知
		r.Get("/notifications", notificationHandler.List)
		r.Put("/notifications/{id}/read", notificationHandler.MarkAsRead)
		r.Delete("/notifications/{id}", notificationHandler.Delete)
	})

	return r
}
