package vuetsc

import (
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var pkgLogger atomic.Pointer[log.Logger]

func init() {
	pkgLogger.Store(log.NewWithOptions(os.Stderr, log.Options{Prefix: "vuetsc"}))
}

// SetLogger replaces the package logger. Hook scripts log through it too.
func SetLogger(l *log.Logger) {
	if l != nil {
		pkgLogger.Store(l)
	}
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return pkgLogger.Load()
}
