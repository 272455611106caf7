package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-cli-base"
)

const appName = "long-text-summary-go"

// Execute は、CLIアプリケーションのルートエントリポイントです。
// 全てのサブコマンドをルートコマンドにアタッチし、実行を開始します。
func Execute() {
	clibase.Execute(appName, nil, createPreRunE(nil), summarizeCmd)
}

// createPreRunE は、clibase共通のPersistentPreRunEロジックとアプリケーション固有のロジックを結合した関数を作成します。
func createPreRunE(preRunE func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(newLogger(clibase.Flags.Verbose))
		if clibase.Flags.Verbose {
			slog.Debug("Verbose mode enabled.")
		}

		if preRunE != nil {
			return preRunE(cmd, args)
		}
		return nil
	}
}

// newLogger は標準エラー出力へのロガーを作成します。
// Verboseモードではデバッグログとソースの位置を出力します。
func newLogger(verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
