package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed summary_prompt.md
var SummaryPromptTemplate string

const (
	// DefaultInstruction はセグメント要約に使う既定の指示文です。
	DefaultInstruction = "Summarize the following text:"
	// ReduceInstruction は中間要約を再要約する Reduce パスの指示文です。
	ReduceInstruction = "Summarize the following summary:"
)

// TemplateData はプロンプトテンプレートに埋め込む値です。
type TemplateData struct {
	Instruction string
	Text        string
}

// PromptBuilder はプロンプトの構成とテンプレート実行を管理します。
type PromptBuilder struct {
	tmpl *template.Template
	err  error
}

// NewSummaryPromptBuilder は「指示文、空行、本文、空行、Summary:」の形式で PromptBuilder を初期化します。
// パースに失敗した場合は、内部にエラーを保持したPromptBuilderを返します。
func NewSummaryPromptBuilder() *PromptBuilder {
	return NewPromptBuilder("summary", SummaryPromptTemplate)
}

// NewPromptBuilder は任意のテンプレート文字列から PromptBuilder を初期化します。
func NewPromptBuilder(name, text string) *PromptBuilder {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	return &PromptBuilder{tmpl: tmpl, err: err}
}

// Err は PromptBuilder の初期化（テンプレートパース）時に発生したエラーを返します。
func (b *PromptBuilder) Err() error {
	return b.err
}

// Build は TemplateData を埋め込み、モデルへ送る最終的なプロンプト文字列を完成させます。
// Reduce パスは全セグメントが失敗した場合も実行されるため、空の Text も受け付けます。
func (b *PromptBuilder) Build(data TemplateData) (string, error) {
	if b.tmpl == nil || b.err != nil {
		return "", fmt.Errorf("prompt template is not properly initialized: %w", b.err)
	}
	if strings.TrimSpace(data.Instruction) == "" {
		return "", fmt.Errorf("プロンプト実行失敗: Instructionが空です (template: %s)", b.tmpl.Name())
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトの実行に失敗しました: %w", err)
	}

	return sb.String(), nil
}
