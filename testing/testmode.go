// Package testing flags the process as a test run when imported for its side
// effects. Binaries and app.InTestMode read CAMPAIGNS_TEST_MODE.
package testing

import (
	"os"
	"sync"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		if os.Getenv("CAMPAIGNS_TEST_MODE") == "" {
			_ = os.Setenv("CAMPAIGNS_TEST_MODE", "1")
		}
	})
}

func init() {
	ensureTestMode()
}
