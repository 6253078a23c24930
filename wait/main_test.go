package wait

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain fails the package if any timer, ticker or observation goroutine outlives its wait.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
