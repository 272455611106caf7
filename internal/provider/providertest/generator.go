// Package providertest は、Model Provider を使うパッケージのテスト用の Generator を提供します。
package providertest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/shouni/long-text-summary-go/internal/provider"
)

// ErrMockFailure は MockGenerator が失敗を返すときのエラーです。
var ErrMockFailure = errors.New("mock generation failure")

// MockGenerator はテスト用の Generator です。呼び出しを記録し、任意の呼び出しを失敗させられます。
type MockGenerator struct {
	// Respond は応答を生成します。nil の場合は "summary:<呼び出し番号>" を返します。
	Respond func(call int, prompt string) string
	// FailWhen が true を返した呼び出しは ErrMockFailure で失敗します。
	FailWhen func(call int, prompt string) bool
	// EchoPrompt が true の場合、応答の前にプロンプトをそのまま付与します。
	EchoPrompt bool
	// Concurrent は ConcurrentSafe の戻り値です。
	Concurrent bool

	mu      sync.Mutex
	prompts []string
	params  []provider.GenerateParams
}

func (m *MockGenerator) Name() string { return "mock" }

func (m *MockGenerator) ConcurrentSafe() bool { return m.Concurrent }

func (m *MockGenerator) Generate(ctx context.Context, prompt string, params provider.GenerateParams) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.params = append(m.params, params)
	call := len(m.prompts)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &provider.Error{Provider: m.Name(), Err: err}
	}
	if m.FailWhen != nil && m.FailWhen(call, prompt) {
		return "", &provider.Error{Provider: m.Name(), Err: ErrMockFailure}
	}

	var text string
	if m.Respond != nil {
		text = m.Respond(call, prompt)
	} else {
		text = "summary:" + strconv.Itoa(call)
	}
	if m.EchoPrompt {
		text = prompt + " " + text
	}
	return text, nil
}

// Calls は Generate の呼び出し回数を返します。
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts は受け取ったプロンプトを呼び出し順に返します。
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Params は受け取ったパラメータを呼び出し順に返します。
func (m *MockGenerator) Params() []provider.GenerateParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.GenerateParams(nil), m.params...)
}

// PromptContaining は substr を含む最初のプロンプトを返します。
func (m *MockGenerator) PromptContaining(substr string) (string, bool) {
	for _, p := range m.Prompts() {
		if strings.Contains(p, substr) {
			return p, true
		}
	}
	return "", false
}

var (
	_ provider.Generator       = (*MockGenerator)(nil)
	_ provider.ConcurrencySafe = (*MockGenerator)(nil)
)
