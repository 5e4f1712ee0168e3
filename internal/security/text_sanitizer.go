// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はユーザーが入力したテキスト（プロフィール、目標、進捗投稿）から
// HTMLマークアップを取り除き、プレーンテキストとして保存できる形にする。
// bluemondayのStrictPolicyを使用し、すべてのタグと属性を除去する。
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストのサニタイズ機能を定義する。
type TextSanitizer interface {
	// Sanitize はタグを除去し、前後の空白を取り除いたテキストを返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string
	// SanitizeOptional はnilをそのまま返し、空になった値はnilにする。
	SanitizeOptional(raw *string) *string
	// SanitizeURL はhttpまたはhttpsの絶対URLのみを受け付ける。
	SanitizeURL(raw string) (string, bool)
}

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses はエンティティの多重エンコードを展開する上限回数。
const maxSanitizePasses = 4

// markupStripper は上限回数で安定しなかった入力から山括弧を取り除く。
var markupStripper = strings.NewReplacer("<", "", ">", "")

// Sanitize はbluemondayでタグを除去した後、エスケープされた文字を元に戻す。
// 出力はHTMLとしてではなくJSON文字列として返されるため、エスケープは保持しない。
// 元に戻した結果に新たなタグが現れなくなるまで繰り返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	current := raw
	for range maxSanitizePasses {
		next := html.UnescapeString(s.policy.Sanitize(current))
		if next == current {
			return strings.TrimSpace(next)
		}
		current = next
	}
	if html.UnescapeString(s.policy.Sanitize(current)) != current {
		current = markupStripper.Replace(current)
	}
	return strings.TrimSpace(current)
}

func (s *textSanitizer) SanitizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	clean := s.Sanitize(*raw)
	if clean == "" {
		return nil
	}
	return &clean
}

func (s *textSanitizer) SanitizeURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true
	default:
		return "", false
	}
}
