package pipeline

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultCSVColumn は CSV 入力で要約対象とする既定の列名です。
const DefaultCSVColumn = "Review"

// SourceLoader は DocumentLoader の具象実装です。
// テキストファイル、CSV の1列、URLリストのいずれかから文書を組み立てます。
type SourceLoader struct {
	reader  InputReader
	fetcher ContentFetcher
}

// NewSourceLoader は SourceLoader の新しいインスタンスを作成します。
// URLリストを使わない場合、fetcher は nil で構いません。
func NewSourceLoader(reader InputReader, fetcher ContentFetcher) *SourceLoader {
	return &SourceLoader{
		reader:  reader,
		fetcher: fetcher,
	}
}

// Load は CmdOptions に従って要約対象の文書を読み込みます。
func (l *SourceLoader) Load(ctx context.Context, opts CmdOptions) (string, error) {
	if opts.URLFile != "" {
		return l.loadFromURLList(ctx, opts.URLFile)
	}
	if opts.InputPath == "" {
		return "", fmt.Errorf("入力ファイルを指定してください。引数にファイルパスを渡すか、--url-file オプションを指定してください。")
	}

	rc, err := l.reader.Open(ctx, opts.InputPath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if strings.EqualFold(filepath.Ext(opts.InputPath), ".csv") {
		column := opts.CSVColumn
		if column == "" {
			column = DefaultCSVColumn
		}
		return readCSVColumn(rc, column, opts.GroupColumn)
	}

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("入力ファイルの読み取りに失敗しました: %w", err)
	}
	return string(data), nil
}

func (l *SourceLoader) loadFromURLList(ctx context.Context, urlFile string) (string, error) {
	if l.fetcher == nil {
		return "", fmt.Errorf("URLリストが指定されましたが、ContentFetcherが初期化されていません。")
	}

	rc, err := l.reader.Open(ctx, urlFile)
	if err != nil {
		return "", fmt.Errorf("URLファイルの読み込みに失敗しました: %w", err)
	}
	defer rc.Close()

	urls, err := readURLList(rc)
	if err != nil {
		return "", fmt.Errorf("URLファイルの読み込みに失敗しました: %w", err)
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("URLリストファイルに有効なURLが一件も含まれていませんでした。")
	}

	results, err := l.fetcher.Fetch(ctx, urls)
	if err != nil {
		return "", err
	}
	return CombineContents(results), nil
}

// readURLList は1行1URLのリストを読み込みます。空行と # で始まる行は無視します。
func readURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ファイルの読み取り中にエラーが発生しました: %w", err)
	}
	return urls, nil
}

// グループ化した CSV の各グループの見出しと、グループ間の区切り線の長さです。
const (
	groupHeaderPrefix = "TITLE OF THE SEGMENT : "
	groupSeparatorLen = 50
)

// readCSVColumn はヘッダー行から column 列を探し、空でない値を改行で結合して返します。
// groupColumn が指定された場合は、その列の値ごとに行をまとめ、見出しと区切り線を付けて結合します。
func readCSVColumn(r io.Reader, column, groupColumn string) (string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return "", fmt.Errorf("CSVファイルが空です")
	}
	if err != nil {
		return "", fmt.Errorf("CSVヘッダーの読み取りに失敗しました: %w", err)
	}

	index, err := columnIndex(header, column)
	if err != nil {
		return "", err
	}
	groupIndex := -1
	if groupColumn != "" {
		if groupIndex, err = columnIndex(header, groupColumn); err != nil {
			return "", err
		}
	}

	var values []string
	groups := make(map[string][]string)
	dropped := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("CSVの読み取りに失敗しました: %w", err)
		}
		value := field(record, index)
		if strings.TrimSpace(value) == "" {
			dropped++
			continue
		}
		if groupIndex < 0 {
			values = append(values, value)
			continue
		}
		key := field(record, groupIndex)
		if strings.TrimSpace(key) == "" {
			dropped++
			continue
		}
		groups[key] = append(groups[key], value)
	}

	if groupIndex >= 0 {
		slog.Info("CSVの行をグループごとにまとめました",
			slog.String("column", column),
			slog.String("group_column", groupColumn),
			slog.Int("groups", len(groups)),
			slog.Int("dropped", dropped))
		return joinGroups(groups), nil
	}

	slog.Info("CSVから要約対象の列を読み込みました",
		slog.String("column", column),
		slog.Int("rows", len(values)),
		slog.Int("dropped", dropped))
	return strings.Join(values, "\n"), nil
}

// joinGroups はグループをキーの昇順に並べ、見出し付きで結合します。
func joinGroups(groups map[string][]string) string {
	keys := slices.Sorted(maps.Keys(groups))

	blocks := make([]string, 0, len(keys))
	for _, key := range keys {
		blocks = append(blocks, groupHeaderPrefix+key+"\n\n"+strings.Join(groups[key], "\n"))
	}
	return strings.Join(blocks, "\n\n"+strings.Repeat("-", groupSeparatorLen)+"\n\n")
}

func columnIndex(header []string, column string) (int, error) {
	for i, name := range header {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == column {
			return i, nil
		}
	}
	return -1, fmt.Errorf("CSVに列 %q が見つかりません (columns: %s)", column, strings.Join(header, ", "))
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

var _ DocumentLoader = (*SourceLoader)(nil)
