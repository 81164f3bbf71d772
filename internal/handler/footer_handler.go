package handler

import (
	"net/http"
)

// FooterRenderer は描画済みフッターHTMLを返すインターフェース。
type FooterRenderer interface {
	HTML() []byte
}

// NewFooterHandler はフッター断片を返すハンドラーを返す。
// GET /footer
func NewFooterHandler(footer FooterRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		w.Write(footer.HTML())
	}
}
