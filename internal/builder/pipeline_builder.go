package builder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/shouni/web-text-pipe-go/pkg/builder"

	"github.com/shouni/long-text-summary-go/internal/pipeline"
	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/internal/summarizer"
)

// BuildPipeline は、必要なすべての依存関係を構築し、DIされた Pipeline インスタンスと
// クリーンアップ関数を返します。クリーンアップ関数はエラー時も含め常に非 nil です。
func BuildPipeline(ctx context.Context, opts pipeline.CmdOptions) (*pipeline.Pipeline, func(), error) {
	closer := func() {}

	// ----------------------------------------------------------------
	// 1. GCS クライアント (gs:// を使う場合のみ)
	// ----------------------------------------------------------------
	var gcsClient *storage.Client
	if usesGCS(opts) {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, closer, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
		}
		gcsClient = client
		closer = func() {
			if err := client.Close(); err != nil {
				slog.Warn("GCSクライアントのクローズに失敗しました", slog.String("error", err.Error()))
			}
		}
	}

	// ----------------------------------------------------------------
	// 2. Model Provider とデコレーター
	// ----------------------------------------------------------------
	model, err := BuildGenerator(ctx, opts)
	if err != nil {
		return nil, closer, err
	}

	// ----------------------------------------------------------------
	// 3. Summary Reducer
	// ----------------------------------------------------------------
	reducer, err := summarizer.NewReducer(model, opts.Decoding, summarizer.Options{
		SegmentBudget:     opts.ChunkSize,
		ReduceInstruction: opts.ReduceInstruction,
		Concurrency:       opts.Concurrency,
		RateLimit:         opts.RateLimit,
		EchoPolicy:        opts.EchoPolicy(),
	})
	if err != nil {
		return nil, closer, fmt.Errorf("Summary Reducerの初期化に失敗しました: %w", err)
	}

	// ----------------------------------------------------------------
	// 4. 入出力ステージ
	// ----------------------------------------------------------------
	var fetcher pipeline.ContentFetcher
	if opts.URLFile != "" {
		scraperExecutor, err := builder.BuildReliableScraperExecutor(opts.ScraperTimeout, opts.MaxScraperParallel)
		if err != nil {
			return nil, closer, fmt.Errorf("ReliableScraperExecutorの初期化に失敗しました: %w", err)
		}
		fetcher = pipeline.NewWebContentFetcherImpl(scraperExecutor)
	}
	loader := pipeline.NewSourceLoader(pipeline.NewLocalGCSInputReader(gcsClient), fetcher)

	var gcsWriter pipeline.GCSOutputWriter
	if gcsClient != nil {
		gcsWriter = pipeline.NewGCSSummaryWriter(gcsClient, summaryMetadata(opts, model))
	}
	writer := pipeline.NewDestinationWriter(gcsWriter)

	return pipeline.NewPipeline(opts, loader, reducer, writer), closer, nil
}

// BuildGenerator は Model Provider を構築し、キャッシュとリトライのデコレーターを適用します。
// リトライは最も内側に置き、キャッシュヒット時はリトライもモデル呼び出しも発生しません。
func BuildGenerator(ctx context.Context, opts pipeline.CmdOptions) (provider.Generator, error) {
	model, err := provider.New(ctx, provider.Config{
		Name:    opts.ProviderName,
		Model:   opts.ModelName,
		APIKey:  opts.APIKey,
		BaseURL: opts.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("Model Providerの初期化に失敗しました: %w", err)
	}

	model = provider.WithRetry(model, opts.MaxRetries, provider.DefaultRetryBaseDelay)

	model, err = provider.WithCache(model, opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("生成キャッシュの初期化に失敗しました: %w", err)
	}

	slog.Info("Model Provider を初期化しました",
		slog.String("provider", model.Name()),
		slog.Int("max_retries", int(opts.MaxRetries)),
		slog.Int("cache_size", opts.CacheSize))
	return model, nil
}

// summaryMetadata は出力オブジェクトに付与する、要約の出所を示すメタデータです。
func summaryMetadata(opts pipeline.CmdOptions, model provider.Generator) map[string]string {
	source := opts.InputPath
	if opts.URLFile != "" {
		source = opts.URLFile
	}
	return map[string]string{
		"source":     source,
		"provider":   model.Name(),
		"chunk-size": strconv.Itoa(opts.ChunkSize),
	}
}

func usesGCS(opts pipeline.CmdOptions) bool {
	return pipeline.IsGCSURI(opts.InputPath) ||
		pipeline.IsGCSURI(opts.URLFile) ||
		pipeline.IsGCSURI(opts.OutputFilePath)
}
