// Package view はサーバー側で描画するHTML断片を提供する。
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"unicode/utf8"
)

const footerTemplate = `<div class="fixed-bottom w-100"><footer class="bg-dark"><div class="container"><p class="card-text text-light text-center fs-3">Copyright © {{.Year}} <span class="text-warning">{{.Initial}}</span>{{.Rest}}</p></div></footer></div>`

// デフォルトの著作権表示
const (
	DefaultFooterOwner = "Jstreetman"
	DefaultFooterYear  = 2023
)

// FooterConfig はフッターの表示内容。
type FooterConfig struct {
	Owner string
	Year  int
}

type footerData struct {
	Year    int
	Initial string
	Rest    string
}

// Footer は著作権表示のフッター断片。
// 内容は起動時に固定されるため、描画結果をキャッシュして返す。
type Footer struct {
	html []byte
}

// NewFooter はフッターを描画してFooterを生成する。
// Ownerが空の場合はデフォルト値を使用する。
func NewFooter(config FooterConfig) (*Footer, error) {
	if config.Owner == "" {
		config.Owner = DefaultFooterOwner
	}
	if config.Year == 0 {
		config.Year = DefaultFooterYear
	}

	tmpl, err := template.New("footer").Parse(footerTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footer template: %w", err)
	}

	// 先頭1文字を強調表示する
	_, size := utf8.DecodeRuneInString(config.Owner)
	data := footerData{
		Year:    config.Year,
		Initial: config.Owner[:size],
		Rest:    config.Owner[size:],
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render footer: %w", err)
	}

	return &Footer{html: buf.Bytes()}, nil
}

// HTML は描画済みのフッターを返す。
func (f *Footer) HTML() []byte {
	return f.html
}
