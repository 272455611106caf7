package pipeline

import (
	"context"
	"io"
	"time"

	extTypes "github.com/shouni/go-web-exact/v2/pkg/types"

	"github.com/shouni/long-text-summary-go/internal/summarizer"
)

// ----------------------------------------------------------------
// 共通構造体
// ----------------------------------------------------------------

// CmdOptions は CLI オプションの値を集約するための構造体です。
type CmdOptions struct {
	// 入力
	InputPath   string
	URLFile     string
	CSVColumn   string
	GroupColumn string
	Clean       bool

	// 出力 (空の場合は標準出力)
	OutputFilePath string

	// Model Provider
	ProviderName string
	ModelName    string
	APIKey       string
	BaseURL      string
	MaxRetries   uint64
	CacheSize    int

	// 要約
	Decoding          summarizer.DecodingConfig
	ReduceInstruction string
	ChunkSize         int
	Concurrency       int
	RateLimit         time.Duration
	KeepEcho          bool

	// 実行時間とスクレイピング
	Timeout            time.Duration
	ScraperTimeout     time.Duration
	MaxScraperParallel int
}

// EchoPolicy は KeepEcho フラグに対応するエコー除去ポリシーを返します。
func (o CmdOptions) EchoPolicy() summarizer.EchoPolicy {
	if o.KeepEcho {
		return summarizer.EchoKeep
	}
	return summarizer.EchoStripLeading
}

// ----------------------------------------------------------------
// パイプラインステージのインターフェース (DIの契約)
// ----------------------------------------------------------------

// DocumentLoader は、要約対象の文書を1つのテキストとして読み込むステージの契約です。
type DocumentLoader interface {
	Load(ctx context.Context, opts CmdOptions) (string, error)
}

// DocumentSummarizer は、長文を最終要約に縮約するステージの契約です。
// *summarizer.Reducer がこれを満たします。
type DocumentSummarizer interface {
	ReduceSummary(ctx context.Context, text string) (*summarizer.Result, error)
}

// OutputWriter は、最終要約を出力先に書き込むステージの契約です。
type OutputWriter interface {
	// Write は path (ローカルパス、gs:// URI、または空文字列で標準出力) に content を書き込みます。
	Write(ctx context.Context, path string, content string) error
}

// InputReader は、ローカルファイルまたは GCS オブジェクトを開く契約です。
type InputReader interface {
	Open(ctx context.Context, filePath string) (io.ReadCloser, error)
}

// ContentFetcher は、URLからWebコンテンツを取得するステージの契約です。
type ContentFetcher interface {
	Fetch(ctx context.Context, urls []string) ([]extTypes.URLResult, error)
}

// ScraperRunner は、並列スクレイピングとリトライを行う実行者の契約です。
type ScraperRunner interface {
	ScrapeInParallel(ctx context.Context, urls []string) []extTypes.URLResult
}

// GCSOutputWriter は、GCS オブジェクトへの書き込みの契約です。
type GCSOutputWriter interface {
	WriteToGCS(ctx context.Context, bucketName, objectPath string, content string) error
}

// ----------------------------------------------------------------
// Pipeline コア構造
// ----------------------------------------------------------------

// Pipeline はアプリケーションの実行パイプラインを定義し、DIされた依存関係を保持します。
type Pipeline struct {
	Options    CmdOptions
	Loader     DocumentLoader
	Summarizer DocumentSummarizer
	Writer     OutputWriter
}

// NewPipeline は CmdOptions とステージの具象実装を受け取り、Pipelineインスタンスを構築します。
func NewPipeline(
	opts CmdOptions,
	loader DocumentLoader,
	docSummarizer DocumentSummarizer,
	writer OutputWriter,
) *Pipeline {
	return &Pipeline{
		Options:    opts,
		Loader:     loader,
		Summarizer: docSummarizer,
		Writer:     writer,
	}
}
