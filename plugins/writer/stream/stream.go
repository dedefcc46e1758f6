// Package stream 将 SALT 文本写到标准输出（或任意 io.Writer）。
package stream

import (
	"bufio"
	"context"
	"io"
	"os"

	"saltenc/pkg/contract"
)

// Options: NoNewline 为 true 时不追加结尾换行。
type Options struct {
	NoNewline bool `json:"no_newline"`
}

// Stream 实现 contract.Writer；id 仅用于日志，不影响输出。
type Stream struct {
	w       io.Writer
	newline bool
}

// New 创建写到 stdout 的 Writer。
func New(opts *Options) *Stream {
	return NewTo(os.Stdout, opts)
}

// NewTo 创建写到 w 的 Writer。
func NewTo(w io.Writer, opts *Options) *Stream {
	s := &Stream{w: w, newline: true}
	if opts != nil && opts.NoNewline {
		s.newline = false
	}
	return s
}

// Write 原样复制 r 并按需追加换行。
func (s *Stream) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriter(s.w)
	if _, err := io.Copy(bw, r); err != nil {
		return err
	}
	if s.newline {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var _ contract.Writer = (*Stream)(nil)
