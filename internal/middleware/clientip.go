package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP はリクエストのクライアントIPアドレスを返す。
// リバースプロキシ配下ではX-Forwarded-Forの先頭ホップを採用し、
// 無い場合はRemoteAddrのホスト部を返す。
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
