// Package summarizer は長文を分割し、セグメントごとに要約し、その要約を再要約する
// チャンク要約パイプラインを提供します。
package summarizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shouni/long-text-summary-go/internal/provider"
	"github.com/shouni/long-text-summary-go/prompts"
)

// SentenceDelimiter は文の区切りとして扱う文字列です。
const SentenceDelimiter = ". "

// SummarySeparator は中間要約を結合する区切り文字です。
const SummarySeparator = " "

// DefaultChunkSize は、1セグメントに詰め込む最大文字数 (rune 数) です。
const DefaultChunkSize = 4000

// DefaultMaxConcurrency は、Mapフェーズでデフォルトで許可する同時実行数です。
const DefaultMaxConcurrency = 1

// DefaultRateLimit は生成呼び出しの最小間隔です。0 は制限なしを表します。
const DefaultRateLimit time.Duration = 0

// デコーディングの既定値
const (
	DefaultMaxLength   = 512
	DefaultTemperature = 0.7
	DefaultTopP        = 0.95
	DefaultNumBeams    = 4
)

var (
	// ErrInvalidBudget はセグメント予算が正でない場合に返されます。
	ErrInvalidBudget = errors.New("segment budget must be positive")
	// ErrInvalidConfig はデコーディング設定が不正な場合に返されます。
	ErrInvalidConfig = errors.New("invalid decoding configuration")
)

// DecodingConfig は生成パラメータと指示文をまとめた値オブジェクトです。
// 値渡しで共有され、パイプラインの途中で変更されることはありません。
type DecodingConfig struct {
	MaxOutputLength int
	Temperature     float64
	TopP            float64
	NumBeams        int
	DoSample        bool
	Instruction     string
}

// DefaultDecodingConfig は既定値で埋めた DecodingConfig を返します。
func DefaultDecodingConfig() DecodingConfig {
	return DecodingConfig{
		MaxOutputLength: DefaultMaxLength,
		Temperature:     DefaultTemperature,
		TopP:            DefaultTopP,
		NumBeams:        DefaultNumBeams,
		DoSample:        true,
		Instruction:     prompts.DefaultInstruction,
	}
}

// WithInstruction は指示文だけを差し替えたコピーを返します。
func (c DecodingConfig) WithInstruction(instruction string) DecodingConfig {
	c.Instruction = instruction
	return c
}

// Params はプロバイダに渡す生成パラメータを返します。
func (c DecodingConfig) Params() provider.GenerateParams {
	return provider.GenerateParams{
		MaxOutputLength: c.MaxOutputLength,
		Temperature:     c.Temperature,
		TopP:            c.TopP,
		NumBeams:        c.NumBeams,
		DoSample:        c.DoSample,
	}
}

// Validate は設定値の範囲を検証します。
func (c DecodingConfig) Validate() error {
	switch {
	case c.MaxOutputLength <= 0:
		return fmt.Errorf("%w: max output length must be positive (got %d)", ErrInvalidConfig, c.MaxOutputLength)
	case c.Temperature < 0:
		return fmt.Errorf("%w: temperature must not be negative (got %g)", ErrInvalidConfig, c.Temperature)
	case c.TopP <= 0 || c.TopP > 1:
		return fmt.Errorf("%w: top-p must be in (0, 1] (got %g)", ErrInvalidConfig, c.TopP)
	case c.NumBeams < 1:
		return fmt.Errorf("%w: beam count must be at least 1 (got %d)", ErrInvalidConfig, c.NumBeams)
	case strings.TrimSpace(c.Instruction) == "":
		return fmt.Errorf("%w: instruction is empty", ErrInvalidConfig)
	}
	return nil
}

// EchoPolicy は、モデル出力の先頭にプロンプトがそのまま含まれる場合の扱いです。
type EchoPolicy int

const (
	// EchoStripLeading は出力先頭のプロンプトのエコーを取り除きます。
	EchoStripLeading EchoPolicy = iota
	// EchoKeep は出力をそのまま (前後の空白のみ除去して) 返します。
	EchoKeep
)

// Result は ReduceSummary の実行結果です。
type Result struct {
	Summary        string
	SegmentCount   int
	FailedSegments []int // 1始まりのセグメント番号
	ReduceFailed   bool
}
