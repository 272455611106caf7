package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider は langchaingo の llms.Model を Generator に適合させます。
type LangChainProvider struct {
	name  string
	model llms.Model
}

// NewLangChainProvider は ollama または OpenAI 互換のモデルを構築します。
func NewLangChainProvider(name string, cfg Config) (*LangChainProvider, error) {
	var model llms.Model
	var err error

	switch name {
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s モデル (%s) の初期化に失敗しました: %w", name, cfg.Model, err)
	}

	return NewLangChainProviderFromModel(name, model), nil
}

// NewLangChainProviderFromModel は構築済みの llms.Model を包みます。
func NewLangChainProviderFromModel(name string, model llms.Model) *LangChainProvider {
	return &LangChainProvider{name: name, model: model}
}

func (p *LangChainProvider) Name() string { return p.name }

// ConcurrentSafe: langchaingo のクライアントは HTTP 越しにモデルを呼ぶだけで共有状態を持ちません。
func (p *LangChainProvider) ConcurrentSafe() bool { return true }

func (p *LangChainProvider) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	if params.NumBeams > 1 {
		slog.Debug("ビームサーチはこのプロバイダでは利用できないため無視します",
			slog.String("provider", p.name),
			slog.Int("num_beams", params.NumBeams))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt, buildCallOptions(params)...)
	if err != nil {
		return "", wrapError(p.name, err)
	}
	return text, nil
}

// buildCallOptions はデコーディングパラメータを langchaingo の呼び出しオプションに変換します。
// サンプリング無効時は温度 0 の貪欲デコーディングになります。
func buildCallOptions(params GenerateParams) []llms.CallOption {
	var options []llms.CallOption

	if params.MaxOutputLength > 0 {
		options = append(options, llms.WithMaxTokens(params.MaxOutputLength))
	}

	if !params.DoSample {
		return append(options, llms.WithTemperature(0))
	}

	options = append(options, llms.WithTemperature(params.Temperature))
	if params.TopP > 0 {
		options = append(options, llms.WithTopP(params.TopP))
	}
	return options
}

var _ Generator = (*LangChainProvider)(nil)
