package model

import "time"

// Post はユーザーが投稿した短文ニュースを表す。
// Username、Emailは作成時点の投稿者情報の非正規化コピーであり、usersへの参照ではない。
type Post struct {
	ID        string    `json:"id"`
	News      string    `json:"news"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy は識別情報が投稿者と一致するかを判定する。
// ユーザー名とメールアドレスの両方が一致した場合のみtrueを返す。
func (p *Post) IsOwnedBy(id Identity) bool {
	return p.Username == id.Username && p.Email == id.Email
}
