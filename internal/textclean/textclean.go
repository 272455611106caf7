// Package textclean は、要約の前処理としてレビュー本文などの入力テキストを正規化します。
package textclean

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

// disallowedChars は英数字、基本的な句読点、空白、改行以外の文字の連なりにマッチします。
var disallowedChars = regexp.MustCompile(`[^a-zA-Z0-9.,!?'"()\-:; \n]+`)

// Clean は絵文字を除去し、許可されていない文字を削除して前後の空白を取り除きます。
// 文の区切り ". " は保持されるため、セグメント分割の結果には影響しません。
func Clean(text string) string {
	text = gomoji.RemoveEmojis(text)
	text = disallowedChars.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// CleanLines は各行を Clean し、空になった行を除いて改行で結合します。
func CleanLines(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if c := Clean(line); c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, "\n")
}
