package httputil_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/stackpin/pkg/httputil"
)

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, 0, func() error {
		calls++
		if calls < 3 {
			return &httputil.RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})
	fmt.Println("Calls:", calls)
	fmt.Println("Error:", err)
	// Output:
	// Calls: 3
	// Error: <nil>
}

func ExampleIsRedirect() {
	fmt.Println(httputil.IsRedirect(302))
	fmt.Println(httputil.IsRedirect(304))
	// Output:
	// true
	// false
}
