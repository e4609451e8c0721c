package wasm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/datenlord/wbpf-userspace/hostcall"
	"github.com/datenlord/wbpf-userspace/program"
)

// Result holds the output and metadata from one guest invocation.
type Result struct {
	// Values are the entry function's return values, empty when the guest
	// ended via the completion handoff.
	Values   []uint64
	Output   string
	Outcome  program.Outcome
	Duration time.Duration
	Error    error
}

// Runtime manages the wazero engine, the wbpf host module, and compiled
// guest caching.
type Runtime struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	compiled map[string]wazero.CompiledModule
	registry *hostcall.Registry
	extAdd   hostcall.AddFunc
	mu       sync.RWMutex
	closed   bool
}

// New creates a Runtime resolving callByName through registry.
func New(registry *hostcall.Registry, opts ...RuntimeOption) (*Runtime, error) {
	cfg := defaultRuntimeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error

	if cfg.diskCache {
		cacheDir := cfg.cacheDir
		if cacheDir == "" {
			cacheDir = defaultCacheDir()
		}
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)

	r := &Runtime{
		runtime:  rt,
		cache:    cache,
		compiled: make(map[string]wazero.CompiledModule),
		registry: registry,
		extAdd:   cfg.extAdd,
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		r.Close()
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}
	if err := r.instantiateHostModule(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("instantiate host module: %w", err)
	}

	return r, nil
}

// Invoke runs the exported function entry of the guest at path with the given
// arguments. A guest ending with wbpf_host_complete yields OutcomeCompleted;
// a normal return yields OutcomeReturned with the function's values.
func (r *Runtime) Invoke(ctx context.Context, path, entry string, args ...uint64) Result {
	return r.InvokeWith(ctx, path, entry, args)
}

// InvokeWith is Invoke with per-invocation options.
func (r *Runtime) InvokeWith(ctx context.Context, path, entry string, args []uint64, options ...InvokeOption) Result {
	start := time.Now()

	cfg := defaultInvokeConfig()
	for _, opt := range options {
		opt(&cfg)
	}
	return r.invoke(ctx, start, cfg, path, entry, args)
}

func (r *Runtime) invoke(ctx context.Context, start time.Time, cfg invokeConfig, path, entry string, args []uint64) Result {
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	compiled, err := r.getCompiled(ctx, path)
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}

	var stdout bytes.Buffer
	moduleConfig := wazero.NewModuleConfig().
		WithStdout(&stdout).
		WithStderr(&stdout).
		WithName("").
		WithStartFunctions(startFunctions(compiled)...)

	mod, err := r.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		return r.finish(start, &stdout, nil, err)
	}
	defer mod.Close(context.Background())

	fn := mod.ExportedFunction(entry)
	if fn == nil {
		return Result{
			Output:   stdout.String(),
			Error:    fmt.Errorf("guest exports no function %q", entry),
			Duration: time.Since(start),
		}
	}

	values, err := fn.Call(ctx, args...)
	result := r.finish(start, &stdout, values, err)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		result.Error = fmt.Errorf("timeout after %v", cfg.timeout)
		result.Outcome = program.OutcomeFailed
		result.Values = nil
	}
	return result
}

// finish classifies how the guest ended. A zero ExitError is the clean
// completion handoff, not a failure.
func (r *Runtime) finish(start time.Time, stdout *bytes.Buffer, values []uint64, err error) Result {
	result := Result{
		Output:   stdout.String(),
		Duration: time.Since(start),
	}

	if err == nil {
		result.Values = values
		result.Outcome = program.OutcomeReturned
		return result
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == 0 {
			result.Outcome = program.OutcomeCompleted
			return result
		}
		result.Error = fmt.Errorf("guest aborted with exit code %d", exitErr.ExitCode())
		return result
	}

	result.Error = fmt.Errorf("execution failed: %w", err)
	return result
}

// getCompiled returns a cached compiled guest, compiling if necessary.
func (r *Runtime) getCompiled(ctx context.Context, path string) (wazero.CompiledModule, error) {
	r.mu.RLock()
	if compiled, ok := r.compiled[path]; ok {
		r.mu.RUnlock()
		return compiled, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if compiled, ok := r.compiled[path]; ok {
		return compiled, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guest: %w", err)
	}

	compiled, err := r.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", path, err)
	}

	r.compiled[path] = compiled
	return compiled, nil
}

// startFunctions picks the instantiation entry: reactor-style guests export
// _initialize, command-style _start must not run before a targeted invoke.
func startFunctions(compiled wazero.CompiledModule) []string {
	if _, ok := compiled.ExportedFunctions()["_initialize"]; ok {
		return []string{"_initialize"}
	}
	return nil
}

// Close releases all resources held by the Runtime.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	ctx := context.Background()

	var errs []error
	if err := r.runtime.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if r.cache != nil {
		if err := r.cache.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "wbpf")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "wbpf")
	}
	return filepath.Join(os.TempDir(), "wbpf-cache")
}
