// Package validate はリクエストフィールドの存在・形式チェックを提供する。
// 各チェックはFieldErrorを返し、呼び出し側で一覧にまとめて400を返す。
package validate

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/newsboard/internal/model"
)

// Collector はフィールドエラーを蓄積する。
type Collector struct {
	errs []model.FieldError
}

// Add はエラーを追加する。
func (c *Collector) Add(field, message string) {
	c.errs = append(c.errs, model.FieldError{Field: field, Message: message})
}

// Required は値が空白のみでないことを検証する。
func (c *Collector) Required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		c.Add(field, message)
	}
}

// MinLength は値の文字数がmin以上であることを検証する。
func (c *Collector) MinLength(field, value string, min int, message string) {
	if utf8.RuneCountInString(value) < min {
		c.Add(field, message)
	}
}

// MaxLength は値の文字数がmax以下であることを検証する。
// PostgreSQLのVARCHAR(n)と同じく文字数で数える。
func (c *Collector) MaxLength(field, value string, max int, message string) {
	if utf8.RuneCountInString(value) > max {
		c.Add(field, message)
	}
}

// MaxBytes は値のバイト長がmax以下であることを検証する。
func (c *Collector) MaxBytes(field, value string, max int, message string) {
	if len(value) > max {
		c.Add(field, message)
	}
}

// Text は値がPostgreSQLのテキスト型に保存できることを検証する。
// NULと不正なUTF-8は保存時にエラーになる。
func (c *Collector) Text(field, value, message string) {
	if !IsStorableText(value) {
		c.Add(field, message)
	}
}

// IsStorableText は値がNULを含まない正しいUTF-8かどうかを判定する。
func IsStorableText(value string) bool {
	return utf8.ValidString(value) && !strings.ContainsRune(value, 0)
}

// Email は値がメールアドレスとして妥当であることを検証する。
func (c *Collector) Email(field, value, message string) {
	if !IsEmail(value) {
		c.Add(field, message)
	}
}

// Err は蓄積したエラーがあればバリデーションエラーとして返す。
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return model.NewValidationError(c.errs)
}

// IsEmail はaddr-spec単体（表示名なし）のメールアドレスかどうかを判定する。
func IsEmail(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at+1:], ".")
}

// NormalizeEmail はメールアドレスの前後空白を除去し小文字化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
