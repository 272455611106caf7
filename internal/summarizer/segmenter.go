package summarizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SegmentText は、テキストを ". " で文単位に分け、maxLength 文字 (rune) を超えないように
// 先頭から貪欲に詰め込んだセグメント列を返します。これは純粋な関数です。
//
// 1文だけで maxLength を超える場合は分割も切り詰めもせず、その文単独のセグメントになります。
// ". " を含まないテキスト (句読点のない文章や英語以外の文章) は全体が1セグメントになります。
// セグメントを ". " で再結合すると、空白の違いを除いて元のテキストに戻ります。
func SegmentText(text string, maxLength int) []string {
	var segments []string
	var current strings.Builder
	currentLen := 0
	started := false

	flush := func() {
		if seg := strings.TrimSpace(current.String()); seg != "" {
			segments = append(segments, seg)
		}
		current.Reset()
		currentLen = 0
	}

	for _, unit := range sentenceUnits(text) {
		unitLen := utf8.RuneCountInString(unit)

		switch {
		case !started:
			current.WriteString(unit)
			currentLen = unitLen
			started = true
		case currentLen+unitLen+2 <= maxLength: // +2 は復元する ". " の分
			current.WriteString(SentenceDelimiter)
			current.WriteString(unit)
			currentLen += unitLen + 2
		default:
			flush()
			current.WriteString(unit)
			currentLen = unitLen
		}
	}
	flush()

	return segments
}

// sentenceUnits は text を ". " で分割します。空白だけの単位 ("Wait. . . what" の省略記号など) は
// 単独では扱わず、区切りごと次の文の先頭に付けます。末尾に残った場合は直前の文に付けます。
func sentenceUnits(text string) []string {
	var units, pending []string
	for _, part := range strings.Split(text, SentenceDelimiter) {
		pending = append(pending, part)
		if strings.TrimSpace(part) != "" {
			units = append(units, strings.Join(pending, SentenceDelimiter))
			pending = nil
		}
	}
	if len(pending) > 0 {
		if n := len(units); n > 0 {
			units[n-1] = strings.Join(append([]string{units[n-1]}, pending...), SentenceDelimiter)
		} else {
			units = append(units, strings.Join(pending, SentenceDelimiter))
		}
	}
	return units
}

// stripPromptEcho は、モデルがプロンプトを出力の先頭にそのまま含めた場合にそれを取り除きます。
func stripPromptEcho(output, prompt string, policy EchoPolicy) string {
	if policy == EchoStripLeading && prompt != "" {
		trimmed := strings.TrimLeftFunc(output, unicode.IsSpace)
		if strings.HasPrefix(trimmed, prompt) {
			output = trimmed[len(prompt):]
		}
	}
	return strings.TrimSpace(output)
}
