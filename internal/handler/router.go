package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/newsboard/internal/metrics"
	"github.com/hitoshi/newsboard/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	LoginPath         string
	// CSRFがnilの場合はCSRF検証を行わない
	CSRF *middleware.CSRFConfig

	// メトリクス（nilの場合は記録・公開しない）
	HTTPMetrics     middleware.HTTPMetricsRecorder
	MetricsGatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 投稿
	PostService PostServiceInterface

	// フッター
	Footer FooterRenderer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS → (Session | LoginRedirect) → CSRF
//
// 一覧系のGET（/posts, /news）は未認証時にログインページへリダイレクトし、
// 状態変更系と/meは401を返す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.SecurityHeadersConfig{
		HSTS: deps.AuthConfig.CookieSecure,
	}))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	postHandler := NewPostHandler(deps.PostService)

	// --- 認証不要のルート ---
	r.Post("/signup", authHandler.Signup)
	r.Post("/signin", authHandler.Signin)
	r.Post("/logout", authHandler.Logout)

	if deps.Footer != nil {
		r.Get("/footer", NewFooterHandler(deps.Footer))
	}
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	if deps.CSRF != nil {
		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(*deps.CSRF))
	}

	// --- 一覧系: 未認証はログインページへリダイレクト ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewLoginRedirectMiddleware(deps.SessionFinder, loginPath))

		r.Get("/posts", postHandler.List)
		r.Get("/news", postHandler.List)
	})

	// --- 認証が必要なルート: 未認証は401 ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		if deps.CSRF != nil {
			r.Use(middleware.NewCSRFMiddleware(*deps.CSRF))
		}

		r.Get("/me", authHandler.Me)
		r.Post("/create", postHandler.Create)
		r.Put("/posts/update/{postId}", postHandler.Update)
		r.Delete("/posts/{postId}", postHandler.Delete)
	})

	return r
}
