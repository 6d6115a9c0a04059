package room

import (
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
)

func assertSlice[T comparable](t *testing.T, name string, got, exp []T) {
	t.Helper()

	testutil.AssertEqual(t, name+" length", len(got), len(exp))
	for i := range min(len(got), len(exp)) {
		testutil.AssertEqual(t, fmt.Sprintf("%s[%d]", name, i), got[i], exp[i])
	}
}

func ptr[T any](v T) *T {
	return &v
}
