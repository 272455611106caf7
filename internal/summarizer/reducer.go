package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/prompts"
)

// Options は Reducer の構築オプションです。ゼロ値のフィールドには既定値が使われます。
type Options struct {
	SegmentBudget     int
	ReduceInstruction string
	Concurrency       int
	RateLimit         time.Duration
	EchoPolicy        EchoPolicy
}

// Reducer は長文を分割して要約し、中間要約を結合して再要約します。
type Reducer struct {
	executor          SegmentExecutor
	config            DecodingConfig
	segmentBudget     int
	reduceInstruction string
}

// NewReducer は Model Provider と設定から Reducer を構築します。
func NewReducer(model provider.Generator, cfg DecodingConfig, opts Options) (*Reducer, error) {
	s, err := NewSummarizer(model, prompts.NewSummaryPromptBuilder(), opts.EchoPolicy)
	if err != nil {
		return nil, err
	}
	return NewReducerWithExecutor(NewConcurrentExecutor(s, opts.Concurrency, opts.RateLimit), cfg, opts)
}

// NewReducerWithExecutor は任意の SegmentExecutor を使う Reducer を構築します。
func NewReducerWithExecutor(executor SegmentExecutor, cfg DecodingConfig, opts Options) (*Reducer, error) {
	if executor == nil {
		return nil, fmt.Errorf("SegmentExecutor は nil にできません")
	}
	if opts.SegmentBudget == 0 {
		opts.SegmentBudget = DefaultChunkSize
	}
	if opts.SegmentBudget < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidBudget, opts.SegmentBudget)
	}
	if opts.ReduceInstruction == "" {
		opts.ReduceInstruction = prompts.ReduceInstruction
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Reducer{
		executor:          executor,
		config:            cfg,
		segmentBudget:     opts.SegmentBudget,
		reduceInstruction: opts.ReduceInstruction,
	}, nil
}

// ReduceSummary はテキストをセグメントに分割して要約し、中間要約を空白で結合した文字列を
// Reduce 用の指示文で再要約します。
//
// セグメントや Reduce パスの失敗は致命的ではなく、Result に記録したうえで得られた最善の出力を返します。
// 全セグメントが失敗しても、空の結合文字列に対して Reduce パスは実行されます。
// error を返すのはコンテキストが取り消された場合のみです。
func (r *Reducer) ReduceSummary(ctx context.Context, text string) (*Result, error) {
	segments := SegmentText(text, r.segmentBudget)
	slog.Info("テキストをセグメントに分割しました。中間要約を開始します。",
		slog.Int("total_segments", len(segments)),
		slog.Int("segment_budget", r.segmentBudget))

	summaries, failed := r.executor.ExecuteMap(ctx, segments, r.config)
	if len(failed) > 0 {
		slog.Warn("一部のセグメントの要約に失敗しました",
			slog.Int("failed", len(failed)),
			slog.Int("total_segments", len(segments)),
			slog.Any("failed_segments", failed))
	}

	combined := strings.Join(summaries, SummarySeparator)

	final, err := r.executor.ExecuteReduce(ctx, combined, r.config.WithInstruction(r.reduceInstruction))
	result := &Result{
		Summary:        final,
		SegmentCount:   len(segments),
		FailedSegments: failed,
	}
	if err != nil {
		result.Summary = ""
		result.ReduceFailed = true
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("要約処理が中断されました: %w", ctxErr)
	}
	return result, nil
}

// ReduceSummary は既定のオプションで Reducer を構築し、最終要約を返す簡易関数です。
// 設定が不正な場合もエラーを記録して空文字列を返します。
func ReduceSummary(ctx context.Context, text string, cfg DecodingConfig, model provider.Generator, segmentBudget int) string {
	r, err := NewReducer(model, cfg, Options{SegmentBudget: segmentBudget})
	if err != nil {
		slog.Error("Reducerの初期化に失敗しました", slog.String("error", err.Error()))
		return ""
	}

	result, err := r.ReduceSummary(ctx, text)
	if err != nil {
		slog.Error("要約処理が完了しませんでした", slog.String("error", err.Error()))
	}
	if result == nil {
		return ""
	}
	return result.Summary
}
