package host

import (
	"time"

	"github.com/datenlord/wbpf-userspace/hostcall"
)

// InvokerOption configures an Invoker at creation time.
type InvokerOption func(*Invoker)

// WithExtAdd overrides the external addition capability.
func WithExtAdd(fn hostcall.AddFunc) InvokerOption {
	return func(inv *Invoker) {
		inv.extAdd = fn
	}
}

// Option configures a single invocation.
type Option func(*runConfig)

type runConfig struct {
	timeout time.Duration
}

func defaultRunConfig() runConfig {
	return runConfig{}
}

// WithTimeout sets the maximum time the invocation may run. Zero means no
// limit, matching the original's synchronous, non-suspending model.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.timeout = d
	}
}
