package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/engagepod/internal/mail"
	"github.com/hitoshi/engagepod/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	AdminVerifier     middleware.AdminVerifier

	// サービス
	MemberService     MemberServiceInterface
	PostService       PostServiceInterface
	EngagementService EngagementServiceInterface
	FeedService       FeedServiceInterface

	// アナウンス配信
	Broadcaster Broadcaster
	Sender      mail.Sender
	AdminEmail  string

	// 運用エンドポイント
	MetricsHandler http.Handler
	StatusRecorder middleware.HTTPStatusRecorder
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())

	memberHandler := NewMemberHandler(deps.MemberService)
	postHandler := NewPostHandler(deps.PostService)
	engagementHandler := NewEngagementHandler(deps.EngagementService)
	feedHandler := NewFeedHandler(deps.FeedService)
	surveyHandler := NewSurveyHandler(deps.MemberService, deps.Broadcaster, deps.Sender, deps.AdminEmail)

	adminAuth := middleware.NewAdminAuthMiddleware(deps.AdminVerifier, deps.Logger)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// メンバー管理
		// /{key} はGETではメールアドレス、管理者操作ではメンバーIDを運ぶ
		r.Route("/api/members", func(r chi.Router) {
			r.Get("/", memberHandler.List)
			r.With(deps.RateLimiter.SubmitMiddleware()).Post("/", memberHandler.Register)

			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", memberHandler.FindByEmail)
				r.With(adminAuth).Put("/", memberHandler.Update)
				r.With(adminAuth).Delete("/", memberHandler.Delete)
			})
		})

		// 投稿
		r.Route("/api/posts", func(r chi.Router) {
			r.With(deps.RateLimiter.SubmitMiddleware()).Post("/", postHandler.Submit)
			r.With(adminAuth).Get("/", postHandler.ListRecent)
		})

		// フィード
		r.Get("/api/feed", feedHandler.Get)

		// エンゲージメント
		r.Route("/api/engagements", func(r chi.Router) {
			r.Post("/", engagementHandler.Record)
			r.Delete("/", engagementHandler.Remove)
		})

		// 管理者向けアナウンス配信
		r.Route("/api/survey", func(r chi.Router) {
			r.Use(adminAuth)
			r.Post("/send", surveyHandler.Send)
			r.Post("/test", surveyHandler.Test)
			r.Post("/verify", surveyHandler.Verify)
		})
	})

	return r
}
