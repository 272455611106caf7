package summarizer

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/long-text-summary-go/internal/provider"
)

// SegmentExecutor は、Map/Reduce 各フェーズのモデル呼び出しを抽象化するインターフェースです。
// Reducer のコアロジックから並列実行の詳細を分離します。
type SegmentExecutor interface {
	// ExecuteMap は各セグメントを要約し、入力と同じ順序の要約と、失敗したセグメント番号 (1始まり) を返します。
	ExecuteMap(ctx context.Context, segments []string, cfg DecodingConfig) ([]string, []int)
	// ExecuteReduce は結合済みの中間要約を再要約します。
	ExecuteReduce(ctx context.Context, combinedText string, cfg DecodingConfig) (string, error)
}

// ConcurrentExecutor は SegmentExecutor の具体的な実装で、
// 上限付きの errgroup とレートリミッターを使用して並列実行を行います。
type ConcurrentExecutor struct {
	summarizer  *Summarizer
	concurrency int
	limiter     *rate.Limiter
}

// NewConcurrentExecutor は新しい ConcurrentExecutor インスタンスを作成します。
// interval が 0 以下の場合、呼び出し間隔は制限しません。
func NewConcurrentExecutor(s *Summarizer, concurrency int, interval time.Duration) *ConcurrentExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	if !provider.IsConcurrentSafe(s.Model()) && concurrency > 1 {
		slog.Warn("Model Provider が同時呼び出しに対応していないため、並列数を1に制限します",
			slog.String("provider", s.Model().Name()),
			slog.Int("requested", concurrency))
		concurrency = 1
	}

	var limiter *rate.Limiter
	if interval > 0 {
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &ConcurrentExecutor{
		summarizer:  s,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ExecuteMap は Mapフェーズの並列処理を実行します。セグメント同士は独立しているため、
// 結果はインデックスで書き戻し、入力順を保ちます。
func (e *ConcurrentExecutor) ExecuteMap(ctx context.Context, segments []string, cfg DecodingConfig) ([]string, []int) {
	summaries := make([]string, len(segments))
	failed := make([]bool, len(segments))

	slog.Info("セグメントの要約を開始します",
		slog.Int("total_segments", len(segments)),
		slog.Int("max_parallel", e.concurrency))

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i, seg := range segments {
		g.Go(func() error {
			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					slog.Error("セグメントの要約を開始できませんでした",
						slog.Int("segment", i+1),
						slog.String("error", err.Error()))
					failed[i] = true
					return nil
				}
			}

			summary, err := e.summarizer.summarizeReported(ctx, seg, cfg,
				slog.Int("segment", i+1),
				slog.Int("total_segments", len(segments)))
			if err != nil {
				failed[i] = true
				return nil
			}

			summaries[i] = summary
			slog.Info("セグメントの要約が完了しました",
				slog.Int("segment", i+1),
				slog.Int("total_segments", len(segments)))
			return nil
		})
	}
	// ゴルーチンはエラーを返さない
	_ = g.Wait()

	var failedIndexes []int
	for i, f := range failed {
		if f {
			failedIndexes = append(failedIndexes, i+1)
		}
	}
	return summaries, failedIndexes
}

// ExecuteReduce は Reduceフェーズのモデル呼び出しを実行します。
func (e *ConcurrentExecutor) ExecuteReduce(ctx context.Context, combinedText string, cfg DecodingConfig) (string, error) {
	slog.Info("中間要約の再要約（Reduceフェーズ）を開始します。",
		slog.Int("combined_chars", len([]rune(combinedText))))

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			slog.Error("Reduceフェーズの要約を開始できませんでした", slog.String("error", err.Error()))
			return "", err
		}
	}
	return e.summarizer.summarizeReported(ctx, combinedText, cfg, slog.String("phase", "reduce"))
}

var _ SegmentExecutor = (*ConcurrentExecutor)(nil)
