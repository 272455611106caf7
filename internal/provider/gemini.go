package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-ai-client/v2/pkg/ai/gemini"
)

// GeminiProvider は go-ai-client の Gemini クライアントを Generator として公開します。
// クライアントはプロンプトとモデル名のみを受け付けるため、デコーディングパラメータは適用されません。
type GeminiProvider struct {
	client *gemini.Client
	model  string
}

// NewGeminiProvider は APIキー (未指定なら環境変数 GEMINI_API_KEY) でクライアントを初期化します。
func NewGeminiProvider(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	var client *gemini.Client
	var err error

	if cfg.APIKey != "" {
		client, err = gemini.NewClient(ctx, gemini.Config{APIKey: cfg.APIKey})
	} else {
		client, err = gemini.NewClientFromEnv(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました。APIキーを確認してください: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) ConcurrentSafe() bool { return true }

// Generate はプロンプトを Gemini に送信し、応答テキストを返します。
func (p *GeminiProvider) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	slog.Debug("Geminiはデコーディングパラメータを受け付けないため無視します",
		slog.String("model", p.model),
		slog.Float64("temperature", params.Temperature),
		slog.Int("num_beams", params.NumBeams))

	response, err := p.client.GenerateContent(ctx, prompt, p.model)
	if err != nil {
		return "", wrapError(p.Name(), err)
	}
	return response.Text, nil
}

var _ Generator = (*GeminiProvider)(nil)
