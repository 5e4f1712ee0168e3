package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/bucket/internal/auth"
	"github.com/hitoshi/bucket/internal/config"
	"github.com/hitoshi/bucket/internal/database"
	"github.com/hitoshi/bucket/internal/datasource"
	"github.com/hitoshi/bucket/internal/handler"
	"github.com/hitoshi/bucket/internal/metrics"
	"github.com/hitoshi/bucket/internal/middleware"
	"github.com/hitoshi/bucket/internal/repository"
	"github.com/hitoshi/bucket/internal/security"
	"github.com/hitoshi/bucket/internal/usecase"
)

// Backend はストレージ実装ごとのデータソース一式。
type Backend struct {
	Users         datasource.UserDataSource
	Goals         datasource.GoalDataSource
	Updates       datasource.ProgressUpdateDataSource
	Notifications datasource.NotificationDataSource
	Credentials   datasource.CredentialDataSource
	Sessions      datasource.SessionDataSource

	// Health はインメモリ構成ではnil。
	Health handler.HealthChecker

	db *sql.DB
}

// Close はデータベース接続を閉じる。インメモリ構成では何もしない。
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// NewMemoryBackend はMemoryStoreを使用するBackendを生成する。
func NewMemoryBackend() *Backend {
	store := datasource.NewMemoryStore()
	return &Backend{
		Users:         store.Users(),
		Goals:         store.Goals(),
		Updates:       store.Updates(),
		Notifications: store.Notifications(),
		Credentials:   store.Credentials(),
		Sessions:      store.Sessions(),
	}
}

// NewPostgresBackend はPostgreSQLを使用するBackendを生成する。
func NewPostgresBackend(db *sql.DB) *Backend {
	return &Backend{
		Users:         datasource.NewPostgresUserDataSource(db),
		Goals:         datasource.NewPostgresGoalDataSource(db),
		Updates:       datasource.NewPostgresProgressUpdateDataSource(db),
		Notifications: datasource.NewPostgresNotificationDataSource(db),
		Credentials:   datasource.NewPostgresCredentialDataSource(db),
		Sessions:      datasource.NewPostgresSessionDataSource(db),
		Health:        db,
		db:            db,
	}
}

// OpenBackend は設定に応じたBackendを開く。
func OpenBackend(ctx context.Context, cfg *config.Config) (*Backend, error) {
	if cfg.StorageBackend == config.StorageMemory {
		slog.Warn("using in-memory storage; data is lost on restart")
		return NewMemoryBackend(), nil
	}

	db, err := database.OpenAndPing(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Info("database connection established")
	return NewPostgresBackend(db), nil
}

// Application はワイヤリング済みのHTTPハンドラーとバックグラウンド処理の依存関係。
type Application struct {
	Handler     http.Handler
	AuthService *auth.Service
	Metrics     *metrics.Collector
	rateLimiter *middleware.RateLimiter
}

// Close はレートリミッターのクリーンアップgoroutineを停止する。
func (a *Application) Close() {
	a.rateLimiter.Stop()
}

// Build はBackendからリポジトリ・ユースケース・ハンドラーを組み立てる。
// regにはメトリクスを登録するレジストリを渡す。
func Build(cfg *config.Config, backend *Backend, reg *prometheus.Registry) (*Application, error) {
	if cfg.ResetTokenSecret == "" {
		return nil, fmt.Errorf("reset token secret is required")
	}

	collector := metrics.NewCollector(reg)
	sanitizer := security.NewTextSanitizer()

	// 1. 認証サービス
	authService := auth.NewService(backend.Credentials, backend.Sessions, nil, auth.ServiceConfig{
		SessionMaxAge:    cfg.SessionMaxAge,
		BcryptCost:       cfg.BcryptCost,
		ResetTokenSecret: []byte(cfg.ResetTokenSecret),
		ResetTokenTTL:    cfg.ResetTokenTTL,
		BaseURL:          cfg.BaseURL,
	})

	// 2. リポジトリ
	opts := repository.Options{
		FeedLimit:            cfg.FeedLimit,
		SuggestionLimit:      cfg.SuggestionLimit,
		SearchLimit:          cfg.SearchLimit,
		UserFetchConcurrency: cfg.UserFetchConcurrency,
		Recorder:             collector,
	}
	authRepo := repository.NewAuthenticationRepository(authService)
	userRepo := repository.NewUserProfileRepository(backend.Users, authRepo, opts)
	goalRepo := repository.NewGoalRepository(backend.Goals, backend.Users, authRepo, opts)
	updateRepo := repository.NewProgressUpdateRepository(backend.Updates, backend.Goals, backend.Users, authRepo, opts)
	notificationRepo := repository.NewNotificationRepository(backend.Notifications, backend.Users, authRepo, opts)

	// 3. ルーター
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		SessionValidator:  authService,
		AuthFailures:      collector,
		RequestRecorder:   collector,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		HealthChecker:  backend.Health,
		MetricsHandler: metrics.Handler(reg),

		Auth: handler.AuthUseCases{
			SignUp:         usecase.NewSignUpUseCase(authRepo, userRepo, sanitizer),
			SignIn:         usecase.NewSignInUseCase(authRepo, userRepo),
			SignOut:        usecase.NewSignOutUseCase(authRepo),
			ForgotPassword: usecase.NewForgotPasswordUseCase(authRepo),
			ResetPassword:  usecase.NewResetPasswordUseCase(authRepo),
			CheckUsername:  usecase.NewCheckUsernameAvailabilityUseCase(userRepo),
		},
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		Users: handler.UserUseCases{
			GetUser:         usecase.NewGetUserUseCase(authRepo, userRepo),
			UpdateUser:      usecase.NewUpdateUserUseCase(authRepo, userRepo, sanitizer),
			GetSuggestions:  usecase.NewGetSuggestionsUseCase(authRepo, userRepo),
			SearchUsers:     usecase.NewSearchUsersUseCase(authRepo, userRepo),
			FollowUser:      usecase.NewFollowUserUseCase(authRepo, userRepo, notificationRepo, collector),
			FetchConnection: usecase.NewFetchUserConnectionsUseCase(authRepo, userRepo),
		},
		Goals: handler.GoalUseCases{
			CreateGoal:     usecase.NewCreateGoalUseCase(authRepo, goalRepo, sanitizer),
			FetchUserGoals: usecase.NewFetchUserGoalsUseCase(authRepo, goalRepo),
			FetchOwnGoals:  usecase.NewFetchOwnGoalsUseCase(authRepo, goalRepo),
			DeleteGoal:     usecase.NewDeleteGoalUseCase(authRepo, goalRepo),
		},
		Updates: handler.ProgressUpdateUseCases{
			CreateUpdate: usecase.NewCreateProgressUpdateUseCase(authRepo, goalRepo, updateRepo, sanitizer),
			FetchByGoal:  usecase.NewFetchProgressUpdatesByGoalUseCase(authRepo, updateRepo),
			FetchFeed:    usecase.NewFetchFeedUpdatesUseCase(authRepo, updateRepo),
			LikeUpdate:   usecase.NewLikeProgressUpdateUseCase(authRepo, updateRepo, userRepo, notificationRepo, collector),
		},
		Notifications: handler.NotificationUseCases{
			FetchNotifications: usecase.NewFetchNotificationsUseCase(authRepo, notificationRepo),
			MarkAsRead:         usecase.NewMarkNotificationAsReadUseCase(authRepo, notificationRepo),
			DeleteNotification: usecase.NewDeleteNotificationUseCase(authRepo, notificationRepo),
		},
	}

	return &Application{
		Handler:     handler.NewRouter(deps),
		AuthService: authService,
		Metrics:     collector,
		rateLimiter: rateLimiter,
	}, nil
}
