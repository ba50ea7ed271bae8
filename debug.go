package malloc

import (
	"fmt"
	"os"
)

// Debug gates trace logging to os.Stderr of NewContext, AddBuffer,
// Allocate, Release, Resize and the system-buffer helpers,
// mirroring the teacher package's trace constant — off by default, since
// this is a library whose callers almost never want it, flippable at
// runtime for anyone debugging a heap-corruption report.
var Debug = false

func tracef(format string, args ...interface{}) {
	if !Debug {
		return
	}
	fmt.Fprintf(os.Stderr, "malloc: "+format+"\n", args...)
}
