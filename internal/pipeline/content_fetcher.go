package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	extTypes "github.com/shouni/go-web-exact/v2/pkg/types"
	"github.com/shouni/web-text-pipe-go/pkg/runner"
)

// WebContentFetcherImpl は ContentFetcher インターフェースの具象実装です。
// リトライと並列実行は ScraperRunner (ReliableScraper) 側で完結します。
type WebContentFetcherImpl struct {
	scraperRunner ScraperRunner
}

// NewWebContentFetcherImpl は WebContentFetcherImpl の新しいインスタンスを作成します。
func NewWebContentFetcherImpl(scraperRunner ScraperRunner) *WebContentFetcherImpl {
	return &WebContentFetcherImpl{
		scraperRunner: scraperRunner,
	}
}

// Fetch は、URLリストのスクレイピングを実行者に委譲し、本文を取得できた結果だけを返します。
func (w *WebContentFetcherImpl) Fetch(ctx context.Context, urls []string) ([]extTypes.URLResult, error) {
	slog.Info("Webコンテンツの抽出処理を ScraperRunner に委譲します。", slog.Int("total_urls", len(urls)))

	results := w.scraperRunner.ScrapeInParallel(ctx, urls)

	successful := make([]extTypes.URLResult, 0, len(results))
	for _, res := range results {
		if res.Error != nil || strings.TrimSpace(res.Content) == "" {
			slog.Warn("URLのコンテンツを取得できませんでした。スキップします。", slog.String("url", res.URL))
			continue
		}
		successful = append(successful, res)
	}

	if len(successful) == 0 {
		return nil, fmt.Errorf("処理可能なWebコンテンツを一件も取得できませんでした。URLを確認してください。")
	}

	slog.Info("Webコンテンツの抽出が完了しました。",
		slog.Int("successful", len(successful)),
		slog.Int("total_urls", len(urls)))
	return successful, nil
}

// CombineContents は、各ページの本文を出典ヘッダー付きで1つの文書に結合します。
func CombineContents(results []extTypes.URLResult) string {
	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Source: ")
		sb.WriteString(res.URL)
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(res.Content))
	}
	return sb.String()
}

var _ ContentFetcher = (*WebContentFetcherImpl)(nil)

// runner.ReliableScraper がこのパッケージの ScraperRunner を満たしているか確認します。
var _ ScraperRunner = (*runner.ReliableScraper)(nil)
