package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry_Next(t *testing.T) {
	testCases := []struct {
		description string
		retry       *Retry
		attempts    int
		expectOK    bool
		expectDelay time.Duration
	}{
		{description: "nil", retry: nil, attempts: 1},
		{description: "none", retry: &Retry{Type: RetryNone, MaxAttempts: 3}, attempts: 1},
		{description: "first backoff", retry: DefaultRetry(), attempts: 1, expectOK: true, expectDelay: time.Second},
		{description: "second backoff", retry: DefaultRetry(), attempts: 2, expectOK: true, expectDelay: 2 * time.Second},
		{description: "exhausted", retry: DefaultRetry(), attempts: 3},
		{description: "capped", retry: &Retry{Type: RetryExponential, MaxAttempts: 10, Delay: time.Second, MaxDelay: 3 * time.Second}, attempts: 5, expectOK: true, expectDelay: 3 * time.Second},
		{description: "fixed", retry: &Retry{Type: RetryFixed, MaxAttempts: 2, Delay: time.Millisecond}, attempts: 1, expectOK: true, expectDelay: time.Millisecond},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ok, delay := testCase.retry.Next(testCase.attempts)
			assert.EqualValues(t, testCase.expectOK, ok)
			assert.EqualValues(t, testCase.expectDelay, delay)
		})
	}
}
