package exception

import (
	"runtime/debug"

	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
)

// SafeGo runs fn in a goroutine; a panic is logged and counted instead of
// taking the process down.
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// Recover is the deferred half of SafeGo, for goroutines started elsewhere.
func Recover(name string) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", "Panic in: ", name, " ", r, "\n", string(debug.Stack()))
	}
}
