// Package host invokes guest programs the way the wbpf device does: once per
// invocation, synchronously from the program's point of view, ending either
// in a normal return or in the one-shot completion handoff.
//
// # Basic Usage
//
//	registry := hostcall.NewRegistry()
//	registry.RegisterValue("test", 7)
//
//	inv := host.New(registry)
//	result := inv.Run(ctx, prog, host.WithTimeout(time.Second))
//	if result.Error != nil {
//	    // the invocation failed; nothing is retried
//	}
//	switch result.Outcome {
//	case program.OutcomeCompleted: // terminal handoff
//	case program.OutcomeReturned:  // normal return
//	}
package host
