package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/blogapi/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver          middleware.PrincipalResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	HTTPRecorder      middleware.HTTPRecorder
	PanicRecorder     middleware.PanicRecorder

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// サービス
	AuthService    AuthServiceInterface
	UserService    UserServiceInterface
	PostService    PostServiceInterface
	CommentService CommentServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → (Bearer → RateLimit(General))
//
// 公開ルート（ヘルスチェック、ログイン、登録、記事・コメントの参照）はBearer以降の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware(logger, deps.PanicRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.HTTPRecorder))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	postHandler := NewPostHandler(deps.PostService)
	commentHandler := NewCommentHandler(deps.CommentService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.With(deps.RateLimiter.LoginMiddleware()).Post("/api/auth/login", authHandler.Login)
	r.Post("/api/users", userHandler.Register)

	r.Get("/api/posts", postHandler.List)
	r.Get("/api/posts/{id}", postHandler.Get)
	r.Get("/api/posts/{id}/comments", commentHandler.ListByPost)
	r.Get("/api/comments", commentHandler.List)
	r.Get("/api/comments/{id}", commentHandler.Get)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Bearer → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerMiddleware(deps.Resolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth/me", authHandler.Me)

		// ユーザー管理
		r.Get("/api/users", userHandler.List)
		r.Get("/api/users/{id}", userHandler.Get)
		r.Put("/api/users/{id}", userHandler.Update)
		r.Delete("/api/users/{id}", userHandler.Delete)
		r.Patch("/api/users/{id}/role", userHandler.ChangeRole)

		// 記事
		r.Post("/api/posts", postHandler.Create)
		r.Put("/api/posts/{id}", postHandler.Update)
		r.Delete("/api/posts/{id}", postHandler.Delete)
		r.Post("/api/posts/{id}/comments", commentHandler.Create)

		// コメント
		r.Put("/api/comments/{id}", commentHandler.Update)
		r.Delete("/api/comments/{id}", commentHandler.Delete)
	})

	return r
}
