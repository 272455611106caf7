// Package provider は、要約パイプラインが依存する生成モデル (Model Provider) を抽象化します。
// パイプラインはプロセス全体のグローバル状態ではなく、明示的に構築された Generator を受け取ります。
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	// DefaultProvider はローカルで Gemma 系モデルを動かす ollama です。
	DefaultProvider = ProviderOllama
)

// defaultModels は、モデル名が省略された場合のプロバイダごとの既定モデルです。
var defaultModels = map[string]string{
	ProviderGemini: "gemini-2.5-flash",
	ProviderOllama: "gemma2:2b",
	ProviderOpenAI: "gpt-4o-mini",
}

var (
	// ErrProvider は、生成呼び出しの失敗すべてがラップするセンチネルエラーです。
	ErrProvider = errors.New("provider error")
	// ErrUnknownProvider は、未対応のプロバイダ名が指定された場合に返されます。
	ErrUnknownProvider = errors.New("unknown provider")
)

// GenerateParams は 1 回の生成呼び出しに渡すデコーディングパラメータです。
type GenerateParams struct {
	MaxOutputLength int
	Temperature     float64
	TopP            float64
	NumBeams        int
	DoSample        bool
}

// Generator は「プロンプトとパラメータからテキストを生成する」能力です。
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerateParams) (string, error)
	Name() string
}

// ConcurrencySafe は、同一インスタンスへの同時呼び出しを保証するプロバイダが実装します。
// 実装していないプロバイダは、一度に 1 呼び出しのみとして扱われます。
type ConcurrencySafe interface {
	ConcurrentSafe() bool
}

// IsConcurrentSafe は g が同時呼び出しに対して安全だと宣言しているかを返します。
func IsConcurrentSafe(g Generator) bool {
	cs, ok := g.(ConcurrencySafe)
	return ok && cs.ConcurrentSafe()
}

// Error は、プロバイダ名と原因を保持する生成エラーです。
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Is により errors.Is(err, ErrProvider) が成立します。
func (e *Error) Is(target error) bool {
	return target == ErrProvider
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(name string, err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	return &Error{Provider: name, Err: err}
}

// Config はプロバイダの構築に必要な設定です。
type Config struct {
	Name    string
	Model   string
	APIKey  string
	BaseURL string
}

// New は Config.Name に対応する Generator を構築します。
// 構築の失敗は回復不能なセットアップエラーとして呼び出し元に返されます。
func New(ctx context.Context, cfg Config) (Generator, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if name == "" {
		name = DefaultProvider
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[name]
	}

	switch name {
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case ProviderOllama, ProviderOpenAI:
		return NewLangChainProvider(name, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Name)
	}
}
