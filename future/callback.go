package future

import (
	"runtime/debug"

	"github.com/warpline/timebox/logger"
	"github.com/warpline/timebox/utils"
)

// invokeCallback runs a user-supplied callback on its own goroutine so
// it can block without holding up promise fulfilment. Panics are
// recovered and logged; nil callbacks are ignored. kind names the
// callback type in the log line.
func invokeCallback[T any](kind string, callback func(T), value T) {
	if callback == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
					logger.Get().Error("panic encountered in future."+kind+" callback", "error", err)
				}
			}
		}()

		callback(value)
	}()
}
