package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NoteSanitizer は投稿の自由記述ノートをサニタイズする。
// ノートはプレーンテキストとしてフィードと通知メールに埋め込まれるため、
// 厳格ポリシーで全タグを除去し、テキストのみを残す。
// 同一入力に対して常に同一出力を返す（冪等）。
type NoteSanitizer struct {
	policy *bluemonday.Policy
}

// NewNoteSanitizer はNoteSanitizerの新しいインスタンスを生成する。
// bluemondayのStrictPolicy（全タグ除去）を使用する。
func NewNoteSanitizer() *NoteSanitizer {
	return &NoteSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はノートからHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
func (s *NoteSanitizer) Sanitize(note string) string {
	return strings.TrimSpace(s.policy.Sanitize(note))
}
