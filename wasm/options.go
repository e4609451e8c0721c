package wasm

import (
	"time"

	"github.com/datenlord/wbpf-userspace/hostcall"
)

// RuntimeOption configures the Runtime at creation time.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	diskCache        bool
	cacheDir         string
	memoryLimitPages uint32
	extAdd           hostcall.AddFunc
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		extAdd: func(a, b int32) int32 { return a + b },
	}
}

// WithDiskCache enables a persistent compilation cache for faster CLI
// startup. Optionally provide a custom directory; otherwise ~/.cache/wbpf or
// XDG_CACHE_HOME/wbpf is used.
func WithDiskCache(dir ...string) RuntimeOption {
	return func(c *runtimeConfig) {
		c.diskCache = true
		if len(dir) > 0 && dir[0] != "" {
			c.cacheDir = dir[0]
		}
	}
}

// WithMemoryLimit sets the maximum memory available to guests, in 64KB pages.
// Zero means the wazero default.
func WithMemoryLimit(pages uint32) RuntimeOption {
	return func(c *runtimeConfig) {
		c.memoryLimitPages = pages
	}
}

// WithExtAdd overrides the extAdd host function. Defaults to plain addition.
func WithExtAdd(fn hostcall.AddFunc) RuntimeOption {
	return func(c *runtimeConfig) {
		if fn != nil {
			c.extAdd = fn
		}
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit1MB   uint32 = 16
	MemoryLimit16MB  uint32 = 256
	MemoryLimit64MB  uint32 = 1024
	MemoryLimit256MB uint32 = 4096
)

// InvokeOption configures a single guest invocation.
type InvokeOption func(*invokeConfig)

type invokeConfig struct {
	timeout time.Duration
}

func defaultInvokeConfig() invokeConfig {
	return invokeConfig{}
}

// WithTimeout sets the maximum time the invocation may run.
func WithTimeout(d time.Duration) InvokeOption {
	return func(c *invokeConfig) {
		c.timeout = d
	}
}
