package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/gemindex/pkg/httputil"
)

func ExampleRetry() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return httputil.Retryable(errors.New("503 from registry"))
		}
		return nil
	})
	fmt.Println("Attempts:", attempts)
	fmt.Println("Error:", err)
	// Output:
	// Attempts: 3
	// Error: <nil>
}

func ExampleRetry_permanent() {
	attempts := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		attempts++
		return errors.New("gem not found")
	})
	fmt.Println("Attempts:", attempts)
	fmt.Println("Error:", err)
	// Output:
	// Attempts: 1
	// Error: gem not found
}
