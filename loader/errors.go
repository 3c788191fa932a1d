package loader

import (
	"github.com/pkg/errors"
)

// Error kinds reported by this package. Every failure wraps exactly one of
// these; callers dispatch on errors.Cause.
var (
	ErrFile   = errors.New("file error")
	ErrMemory = errors.New("memory error")
	ErrFormat = errors.New("invalid format")
	ErrArch   = errors.New("invalid architecture")
	ErrDetect = errors.New("format detection error")
)
