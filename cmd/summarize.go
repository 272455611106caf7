package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/long-text-summary-go/internal/builder"
	"github.com/shouni/long-text-summary-go/internal/pipeline"
	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/internal/summarizer"
	"github.com/shouni/long-text-summary-go/prompts"
)

// パイプライン全体の最大実行時間。個別のスクレイピングタイムアウトとは別に、全体の上限を設ける。
const defaultContextTimeout = 30 * time.Minute

const defaultOutputPath = "summary.txt"

// summarizeCmd は、メインのCLIコマンド定義です。
var summarizeCmd = newSummarizeCmd()

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [input-file]",
		Short: "長文をセグメントに分割して要約し、最終要約を出力します。",
		Long: `
長文をセグメントに分割して要約し、中間要約を結合して再要約します。
入力にはローカルファイル、gs://bucket/object、または .csv ファイル (--csv-column の列) を指定できます。
--url-file を指定すると、リスト内のWebページ本文を取得して要約します。

-o/--output に gs:// URI を指定するとGCSに、空文字列を指定すると標準出力に書き出します。
`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummarize,
	}

	f := cmd.Flags()

	// Model Provider
	f.String("model-provider", provider.DefaultProvider, "Model Provider (gemini, ollama, openai)")
	f.String("model", "", "モデル名 (省略時はプロバイダごとの既定モデル)")
	f.StringP("api-key", "k", "", "APIキー (省略時は GEMINI_API_KEY / OPENAI_API_KEY を使用)")
	f.String("base-url", "", "プロバイダのエンドポイントURL (ollama サーバーなど)")
	f.Uint64("max-retries", 2, "生成呼び出しの最大再試行回数 (0で無効)")
	f.Int("cache-size", 256, "生成結果のLRUキャッシュのエントリ数 (0で無効)")

	// デコーディング
	f.Int("chunk-size", summarizer.DefaultChunkSize, "1セグメントの最大文字数")
	f.Int("max-length", summarizer.DefaultMaxLength, "1回の生成の最大出力長")
	f.Float64("temperature", summarizer.DefaultTemperature, "サンプリング温度")
	f.Float64("top-p", summarizer.DefaultTopP, "nucleus sampling の確率質量")
	f.Int("num-beams", summarizer.DefaultNumBeams, "ビーム数 (対応するプロバイダのみ)")
	f.Bool("no-sample", false, "サンプリングを無効化し、決定的な生成を行う")
	f.String("instruction", prompts.DefaultInstruction, "セグメント要約の指示文")
	f.String("reduce-instruction", prompts.ReduceInstruction, "中間要約を再要約する指示文")
	f.Bool("keep-echo", false, "モデル出力の先頭に含まれるプロンプトを除去しない")

	// 実行制御
	f.Int("concurrency", summarizer.DefaultMaxConcurrency, "セグメント要約の最大同時実行数")
	f.Duration("rate-limit", summarizer.DefaultRateLimit, "生成呼び出しの最小間隔 (例: 500ms)")
	f.DurationP("timeout", "t", defaultContextTimeout, "処理全体のタイムアウト時間")

	// 入出力
	f.StringP("output", "o", defaultOutputPath, "最終要約の出力先 (ローカルパスまたは gs:// URI。空の場合は標準出力)")
	f.Bool("clean", false, "要約前に絵文字と特殊文字を除去する")
	f.String("csv-column", pipeline.DefaultCSVColumn, "CSV入力で要約する列名")
	f.String("group-column", "", "CSV入力の行をこの列の値ごとにまとめ、見出し付きで要約する (例: title)")
	f.StringP("url-file", "f", "", "要約対象のURLリストを記載したファイルパス")
	f.DurationP("scraper-timeout", "s", 15*time.Second, "WebスクレイピングのHTTPタイムアウト時間")
	f.IntP("parallel", "p", 5, "Webスクレイピングの最大同時並列リクエスト数")

	return cmd
}

// newCmdOptionsFromFlags は cobra.Command のフラグと引数から CmdOptions 構造体を生成します。
func newCmdOptionsFromFlags(cmd *cobra.Command, args []string) (pipeline.CmdOptions, error) {
	f := cmd.Flags()
	var err error
	opts := pipeline.CmdOptions{}

	// フラグ取得のエラーは最初の1件のみ保持する
	getString := func(name string) string {
		v, e := f.GetString(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}
	getInt := func(name string) int {
		v, e := f.GetInt(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}
	getFloat := func(name string) float64 {
		v, e := f.GetFloat64(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}
	getBool := func(name string) bool {
		v, e := f.GetBool(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}
	getUint := func(name string) uint64 {
		v, e := f.GetUint64(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}
	getDuration := func(name string) time.Duration {
		v, e := f.GetDuration(name)
		if e != nil && err == nil {
			err = fmt.Errorf("%sフラグの取得に失敗しました: %w", name, e)
		}
		return v
	}

	if len(args) > 0 {
		opts.InputPath = args[0]
	}
	opts.URLFile = getString("url-file")
	opts.CSVColumn = getString("csv-column")
	opts.GroupColumn = getString("group-column")
	opts.Clean = getBool("clean")
	opts.OutputFilePath = getString("output")

	opts.ProviderName = getString("model-provider")
	opts.ModelName = getString("model")
	opts.APIKey = getString("api-key")
	opts.BaseURL = getString("base-url")
	opts.MaxRetries = getUint("max-retries")
	opts.CacheSize = getInt("cache-size")

	opts.Decoding = summarizer.DecodingConfig{
		MaxOutputLength: getInt("max-length"),
		Temperature:     getFloat("temperature"),
		TopP:            getFloat("top-p"),
		NumBeams:        getInt("num-beams"),
		DoSample:        !getBool("no-sample"),
		Instruction:     getString("instruction"),
	}
	opts.ReduceInstruction = getString("reduce-instruction")
	opts.KeepEcho = getBool("keep-echo")
	opts.ChunkSize = getInt("chunk-size")
	opts.Concurrency = getInt("concurrency")
	opts.RateLimit = getDuration("rate-limit")

	opts.Timeout = getDuration("timeout")
	opts.ScraperTimeout = getDuration("scraper-timeout")
	opts.MaxScraperParallel = getInt("parallel")

	if err != nil {
		return pipeline.CmdOptions{}, err
	}
	if err := validateCmdOptions(opts); err != nil {
		return pipeline.CmdOptions{}, err
	}
	return opts, nil
}

// validateCmdOptions はフラグ値の組み合わせと範囲を検証します。
func validateCmdOptions(opts pipeline.CmdOptions) error {
	switch {
	case opts.InputPath == "" && opts.URLFile == "":
		return fmt.Errorf("入力ファイルを引数で指定するか、-f/--url-file オプションでURLリストファイルを指定してください")
	case opts.InputPath != "" && opts.URLFile != "":
		return fmt.Errorf("入力ファイルと --url-file は同時に指定できません")
	case opts.ChunkSize < 1:
		return fmt.Errorf("--chunk-size には1以上の値を指定する必要があります: %w", summarizer.ErrInvalidBudget)
	case opts.Concurrency < 1:
		return fmt.Errorf("--concurrency には1以上の値を指定する必要があります")
	case opts.RateLimit < 0:
		return fmt.Errorf("--rate-limit には0以上の値を指定する必要があります")
	case opts.CacheSize < 0:
		return fmt.Errorf("--cache-size には0以上の値を指定する必要があります")
	case opts.MaxScraperParallel < 1:
		return fmt.Errorf("--parallel には1以上の値を指定する必要があります")
	case opts.Timeout <= 0:
		return fmt.Errorf("--timeout には正の値を指定する必要があります")
	}
	return opts.Decoding.Validate()
}

// runSummarize はCLIのメインロジックを実行します。
func runSummarize(cmd *cobra.Command, args []string) error {
	opts, err := newCmdOptionsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	p, closer, err := builder.BuildPipeline(ctx, opts)
	defer closer()
	if err != nil {
		return fmt.Errorf("パイプラインの構築に失敗しました: %w", err)
	}

	if err := p.Execute(ctx); err != nil {
		return fmt.Errorf("パイプラインの実行中にエラーが発生しました: %w", err)
	}
	return nil
}
