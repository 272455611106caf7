package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/prompts"
)

// Summarizer は1つのセグメントをモデルで要約します。
type Summarizer struct {
	model   provider.Generator
	builder *prompts.PromptBuilder
	echo    EchoPolicy
}

// NewSummarizer は新しい Summarizer インスタンスを作成します。
func NewSummarizer(model provider.Generator, builder *prompts.PromptBuilder, echo EchoPolicy) (*Summarizer, error) {
	if model == nil {
		return nil, fmt.Errorf("Model Provider は nil にできません")
	}
	if builder == nil {
		builder = prompts.NewSummaryPromptBuilder()
	}
	if err := builder.Err(); err != nil {
		return nil, fmt.Errorf("Prompt Builderの初期化に失敗しました: %w", err)
	}

	return &Summarizer{model: model, builder: builder, echo: echo}, nil
}

// Model は要約に使う Model Provider を返します。
func (s *Summarizer) Model() provider.Generator {
	return s.model
}

// SummarizeSegment はセグメントを要約します。生成に失敗した場合はエラーをログに記録し、
// 空文字列を返します。長文の一部が失敗しても全体の処理は継続させるためです。
func (s *Summarizer) SummarizeSegment(ctx context.Context, segment string, cfg DecodingConfig) string {
	summary, _ := s.summarizeReported(ctx, segment, cfg)
	return summary
}

// summarizeReported は SummarizeSegment と同じ規則で要約し、失敗時は記録済みのエラーも返します。
// attrs はログに付与する属性 (セグメント番号など) です。
func (s *Summarizer) summarizeReported(ctx context.Context, segment string, cfg DecodingConfig, attrs ...any) (string, error) {
	summary, err := s.summarize(ctx, segment, cfg)
	if err != nil {
		attrs = append(attrs,
			slog.String("provider", s.model.Name()),
			slog.String("error", err.Error()))
		slog.Error("要約の生成に失敗しました。空の要約として扱います", attrs...)
		return "", err
	}
	return summary, nil
}

// summarize はプロンプトを組み立ててモデルを呼び出し、エコーを除去した要約を返します。
func (s *Summarizer) summarize(ctx context.Context, segment string, cfg DecodingConfig) (string, error) {
	prompt, err := s.builder.Build(prompts.TemplateData{
		Instruction: cfg.Instruction,
		Text:        segment,
	})
	if err != nil {
		return "", fmt.Errorf("プロンプトの生成に失敗しました: %w", err)
	}

	output, err := s.model.Generate(ctx, prompt, cfg.Params())
	if err != nil {
		return "", err
	}

	return stripPromptEcho(output, prompt, s.echo), nil
}
