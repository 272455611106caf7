package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-utils/iohandler"

	"github.com/shouni/long-text-summary-go/internal/textclean"
)

const (
	PhaseLoad      = "文書読み込みフェーズ"
	PhaseSummarize = "要約フェーズ"
	PhaseWrite     = "出力フェーズ"
)

// Execute は 読み込み → (クリーニング) → 要約 → 出力 の順でステージを実行します。
// 出力に失敗した場合はエラーを記録し、最終要約を標準出力に書き出して正常終了します。
func (p *Pipeline) Execute(ctx context.Context) error {
	// 1. 文書読み込みステージ
	text, err := p.Loader.Load(ctx, p.Options)
	if err != nil {
		return fmt.Errorf("%sでエラーが発生しました: %w", PhaseLoad, err)
	}
	slog.Info("文書を読み込みました。", slog.Int("chars", len([]rune(text))))

	if p.Options.Clean {
		text = textclean.CleanLines(strings.Split(text, "\n"))
		slog.Info("テキストのクリーニングが完了しました。", slog.Int("chars", len([]rune(text))))
	}

	// 2. 要約ステージ
	result, err := p.Summarizer.ReduceSummary(ctx, text)
	if err != nil {
		return fmt.Errorf("%sでエラーが発生しました: %w", PhaseSummarize, err)
	}
	slog.Info("要約が完了しました。",
		slog.Int("segments", result.SegmentCount),
		slog.Int("failed_segments", len(result.FailedSegments)),
		slog.Bool("reduce_failed", result.ReduceFailed))

	// 3. 出力ステージ
	if err := p.Writer.Write(ctx, p.Options.OutputFilePath, result.Summary); err != nil {
		slog.Error(PhaseWrite+"で出力に失敗しました。要約を標準出力に書き出します。",
			slog.String("output", p.Options.OutputFilePath),
			slog.String("error", err.Error()))
		if err := iohandler.WriteOutputString("", result.Summary); err != nil {
			return fmt.Errorf("%sで標準出力への書き込みにも失敗しました: %w", PhaseWrite, err)
		}
		return nil
	}

	slog.Info("処理が正常に完了しました。")
	return nil
}
