package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、JSONには決して出力しない。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session はユーザーのログインセッションを表す。
// サインイン時点のユーザー名とメールアドレスのコピーを保持する。
type Session struct {
	ID        string
	UserID    string
	Username  string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Identity はセッションから復元した認証済みユーザーの識別情報。
// 投稿の所有者判定に使用する。
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Identity はセッションが表す識別情報を返す。
func (s *Session) Identity() Identity {
	return Identity{
		UserID:   s.UserID,
		Username: s.Username,
		Email:    s.Email,
	}
}
