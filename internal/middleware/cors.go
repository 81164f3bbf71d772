package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// corsMaxAge はプリフライト結果のキャッシュ秒数。
const corsMaxAge = 600

// splitOrigins はカンマ区切りのオリジン指定を分解する。空要素と"*"は捨てる。
func splitOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	return origins
}

// NewCORSMiddleware はCookie付きのクロスオリジン呼び出しを許可するミドルウェアを返す。
// allowedOriginはカンマ区切りで複数指定できる。credentialsと併用するためワイルドカードは無視する。
// 有効なオリジンが1つもない場合はCORSヘッダーを一切付けない。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	origins := splitOrigins(allowedOrigin)
	if len(origins) == 0 {
		// go-chi/corsは空のAllowedOriginsを全許可として扱う
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", csrfHeaderName},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	})
}
