// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"os"
	"runtime/debug"
)

// HandlePanic is deferred at the top of main() and of every goroutine entry
// point. It prints the panic value with a stack trace and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
}

// HandlePanicFunc is HandlePanic with a cleanup hook, for goroutines that
// hold a resource which must be released on the way down, such as an open
// serial port or an audio device.
//
//	go func() {
//		defer recovery.HandlePanicFunc(func() {
//			port.Close()
//		})
//		b.readLoop(ctx)
//	}()
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}
