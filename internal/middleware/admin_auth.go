package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/engagepod/internal/model"
)

// adminPasswordHeader は管理者パスワードを運ぶリクエストヘッダー。
const adminPasswordHeader = "X-Admin-Password"

// AdminVerifier は管理者シークレットの照合インターフェース。
// clientKeyはロックアウトの追跡単位となるクライアント識別子。
type AdminVerifier interface {
	Verify(clientKey, provided string) error
}

// NewAdminAuthMiddleware はX-Admin-Passwordヘッダーを照合するミドルウェアを返す。
// 照合はクライアントIP単位でロックアウト管理される。
func NewAdminAuthMiddleware(verifier AdminVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)

			if err := verifier.Verify(ip, r.Header.Get(adminPasswordHeader)); err != nil {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					WriteInternalServerError(w)
					return
				}

				status := http.StatusUnauthorized
				switch apiErr.Code {
				case model.ErrCodeRateLimited:
					status = http.StatusTooManyRequests
				case model.ErrCodeAdminNotConfigured:
					status = http.StatusInternalServerError
				}

				logger.Warn("管理者認証に失敗しました",
					slog.String("client_ip", ip),
					slog.String("code", apiErr.Code),
					slog.String("path", r.URL.Path),
				)

				WriteErrorResponse(w, status, apiErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
