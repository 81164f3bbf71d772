package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/newsboard/internal/model"
)

// statusRecorder はステータスコードと書き込みバイト数を記録するResponseWriter。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Unwrap はhttp.ResponseControllerから元のResponseWriterを辿れるようにする。
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// identitySlot はセッションミドルウェアが解決したユーザーをロギングミドルウェアへ戻す。
// コンテキストは内側にしか伝播しないため、ポインタで受け渡す。
type identitySlot struct {
	identity model.Identity
	set      bool
}

var identitySlotContextKey = contextKey("identity_slot")

func recordIdentity(ctx context.Context, id model.Identity) {
	if slot, ok := ctx.Value(identitySlotContextKey).(*identitySlot); ok {
		slot.identity = id
		slot.set = true
	}
}

// accessLogLevel はステータスコードからログレベルを決める。
func accessLogLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// NewLoggingMiddleware は1リクエストにつき1行のアクセスログを出力するミドルウェアを返す。
// chiのRequestIDミドルウェアより内側に置くとrequest_idも出力される。
func NewLoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			slot := &identitySlot{}

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), identitySlotContextKey, slot)))

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.statusCode),
				slog.Int("bytes", rec.bytes),
				slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
			}
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, slog.String("request_id", reqID))
			}
			if slot.set {
				attrs = append(attrs, slog.String("user_id", slot.identity.UserID))
			} else if id, ok := IdentityFromContext(r.Context()); ok {
				attrs = append(attrs, slog.String("user_id", id.UserID))
			}

			logger.LogAttrs(r.Context(), accessLogLevel(rec.statusCode), "http_request", attrs...)
		})
	}
}
