package filesystem

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"saltenc/pkg/contract"
)

// Options 为 FileSystem Reader 的可选配置（最小必要）。
type Options struct {
	// BufSize 为读缓冲区大小（字节）。默认 64KiB。
	BufSize int `json:"buf_size"`
}

// FileSystem 实现基于单个文件或 STDIN 的 Reader。
// 构建顺序文件通常很小，这里不做目录遍历。
type FileSystem struct {
	bufSize int
	stdin   io.Reader
}

// New 创建 FileSystem Reader。
func New(opts *Options) *FileSystem {
	const defaultBuf = 64 * 1024
	b := defaultBuf
	if opts != nil && opts.BufSize > 0 {
		b = opts.BufSize
	}
	return &FileSystem{bufSize: b, stdin: os.Stdin}
}

// Iterate 对每个 root 打开文件并调用 yield；yield 返回后句柄总会被关闭。
// roots 为空或仅为 "-" 时读取 STDIN（不关闭进程的 STDIN）。
func (r *FileSystem) Iterate(ctx context.Context, roots []string, yield func(fileID contract.FileID, rc io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(roots) == 0 || (len(roots) == 1 && roots[0] == "-") {
		return yield(contract.FileID("stdin"), newBufferedCloser(io.NopCloser(r.stdin), r.bufSize))
	}
	for _, root := range roots {
		if root == "-" {
			return fmt.Errorf("%w: stdin '-' cannot be mixed with other inputs", contract.ErrInvalidInput)
		}
	}
	for _, root := range roots {
		if err := r.iterateOne(ctx, root, yield); err != nil {
			return err
		}
	}
	return nil
}

func (r *FileSystem) iterateOne(ctx context.Context, root string, yield func(contract.FileID, io.ReadCloser) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Stat 跟随符号链接；仅接受常规文件
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: input %q is not a regular file", contract.ErrInvalidInput, root)
	}
	f, err := os.Open(root)
	if err != nil {
		return err
	}
	brc := newBufferedCloser(f, r.bufSize)
	defer brc.Close()
	return yield(contract.NormalizeFileID(root), brc)
}

// bufferedCloser 将 bufio.Reader 与底层 Closer 组合为 ReadCloser。
type bufferedCloser struct {
	*bufio.Reader
	c      io.Closer
	closed bool
}

func newBufferedCloser(c io.ReadCloser, bufSize int) *bufferedCloser {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &bufferedCloser{Reader: bufio.NewReaderSize(c, bufSize), c: c}
}

// Close 幂等：重复关闭返回 nil。
func (b *bufferedCloser) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	return b.c.Close()
}

var _ contract.Reader = (*FileSystem)(nil)
