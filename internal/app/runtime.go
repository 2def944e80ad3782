package app

import (
	"os"
	"strconv"
	"sync"
)

const testModeEnv = "CREDISPHERE_TEST_MODE"

var (
	testModeOnce sync.Once
	testMode     bool
)

// InTestMode reports whether CREDISPHERE_TEST_MODE is set to a true value.
// Entrypoints return early in that mode so test binaries never open
// connections or listen on ports. The variable is read once per process.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode, _ = strconv.ParseBool(os.Getenv(testModeEnv))
	})
	return testMode
}
