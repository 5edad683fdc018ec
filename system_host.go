package vuetsc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// SystemHost is a CompilerHost over a billy filesystem. It also implements
// Hasher, ModTimeProvider and CancellationTokenProvider.
type SystemHost struct {
	fs       billy.Filesystem
	cwd      string
	ctx      context.Context
	observer func(fileName string)
}

var (
	_ CompilerHost              = (*SystemHost)(nil)
	_ Hasher                    = (*SystemHost)(nil)
	_ ModTimeProvider           = (*SystemHost)(nil)
	_ CancellationTokenProvider = (*SystemHost)(nil)
)

// HostOption configures a SystemHost.
type HostOption func(*SystemHost)

// WithContext makes the host's cancellation token follow ctx.
func WithContext(ctx context.Context) HostOption {
	return func(h *SystemHost) {
		h.ctx = ctx
	}
}

// WithSourceFileObserver registers fn to be called for every file the host
// compiler materializes. The watch command uses it to register files.
func WithSourceFileObserver(fn func(fileName string)) HostOption {
	return func(h *SystemHost) {
		h.observer = fn
	}
}

// NewSystemHost creates a host reading from fs with cwd as the working
// directory.
func NewSystemHost(fs billy.Filesystem, cwd string, opts ...HostOption) *SystemHost {
	h := &SystemHost{
		fs:  fs,
		cwd: cwd,
		ctx: context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SystemHost) CurrentDirectory() string {
	return h.cwd
}

func (h *SystemHost) FileExists(fileName string) bool {
	info, err := h.fs.Stat(fileName)
	return err == nil && !info.IsDir()
}

func (h *SystemHost) ReadFile(fileName string) (string, bool) {
	data, err := util.ReadFile(h.fs, fileName)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (h *SystemHost) SourceFile(fileName string) bool {
	if !h.FileExists(fileName) {
		return false
	}
	if h.observer != nil {
		h.observer(fileName)
	}
	return true
}

// CreateHash returns the hex SHA-256 of content.
func (h *SystemHost) CreateHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (h *SystemHost) ModifiedTime(fileName string) (time.Time, bool) {
	info, err := h.fs.Stat(fileName)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (h *SystemHost) CancellationToken() CancellationToken {
	return contextToken{ctx: h.ctx}
}

type contextToken struct {
	ctx context.Context
}

func (t contextToken) IsCancellationRequested() bool {
	return t.ctx.Err() != nil
}
