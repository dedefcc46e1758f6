package lines

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"saltenc/pkg/contract"
)

// Options 为行拆分器的可选配置（最小必要）。
type Options struct {
	// MaxLineBytes: 单行最大字节数。0 表示不限制。
	MaxLineBytes int `json:"max_line_bytes"`
	// AllowExts: 允许处理的文件扩展名（大小写不敏感，包含点，如 [".txt"]）。
	// 为空表示不限制；不在列表内的文件返回 ErrInvalidInput。
	AllowExts []string `json:"allow_exts"`
}

// Splitter 按行拆分构建顺序文本。
type Splitter struct {
	maxBytes int
	// 允许扩展名（小写），若为 nil 表示不限制。
	allow map[string]struct{}
}

// New 创建行拆分器。
func New(opts *Options) *Splitter {
	s := &Splitter{}
	if opts == nil {
		return s
	}
	if opts.MaxLineBytes > 0 {
		s.maxBytes = opts.MaxLineBytes
	}
	if len(opts.AllowExts) > 0 {
		s.allow = make(map[string]struct{}, len(opts.AllowExts))
		for _, e := range opts.AllowExts {
			if e == "" {
				continue
			}
			s.allow[strings.ToLower(e)] = struct{}{}
		}
	}
	return s
}

// Split 将输入拆分为 []Record。
// 行号从 1 开始并与源文件一致；纯空白行跳过（不占用输出，但行号照常递增）。
func (s *Splitter) Split(ctx context.Context, fileID contract.FileID, r io.Reader) ([]contract.Record, error) {
	if s.allow != nil && fileID != "stdin" {
		ext := strings.ToLower(path.Ext(string(fileID)))
		if _, ok := s.allow[ext]; !ok {
			return nil, fmt.Errorf("%w: extension %q not allowed for %s", contract.ErrInvalidInput, ext, fileID)
		}
	}
	br := bufio.NewReader(r)
	var recs []contract.Record
	lineNo := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, eof, err := readTrimmedLine(br)
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}
		lineNo++
		if s.maxBytes > 0 && len(line) > s.maxBytes {
			return nil, fmt.Errorf("line %d too large: %d > %d", lineNo, len(line), s.maxBytes)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		recs = append(recs, contract.Record{Line: lineNo, FileID: fileID, Text: line})
	}
	return recs, nil
}

// readTrimmedLine 读取一行，归一 CRLF→LF，并去除结尾换行符；
// 仅当已无任何数据时 eof 为 true（末行无换行也会被返回）。
func readTrimmedLine(br *bufio.Reader) (line string, eof bool, err error) {
	s, err := br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, err
		}
		if s == "" {
			return "", true, nil
		}
	}
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, false, nil
}

var _ contract.Splitter = (*Splitter)(nil)
