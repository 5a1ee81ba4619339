package testutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/esmodel/esmodel/esmodel"
)

// AssertNoError fails the test immediately on an unexpected error.
func AssertNoError(t *testing.T, err error, context string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", context, err)
	}
}

// AssertErrorAs checks that err (or something it wraps) matches target,
// in the errors.As sense.
func AssertErrorAs(t *testing.T, err error, target interface{}, context string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", context)
	}
	if !errors.As(err, target) {
		t.Fatalf("%s: error %v (%T) does not match %T", context, err, err, target)
	}
}

// AssertField checks one field of a document against an expected value
// using deep comparison.
func AssertField(t *testing.T, doc *esmodel.Document, field string, want interface{}) {
	t.Helper()
	got := doc.Get(field)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field %s mismatch (-want +got):\n%s", field, diff)
	}
}

// AssertSetLen checks a result set's length.
func AssertSetLen(t *testing.T, set *esmodel.ResultSet, want int) {
	t.Helper()
	if set == nil {
		t.Fatalf("expected a result set of %d documents, got nil", want)
	}
	if set.Len() != want {
		t.Errorf("expected %d documents, got %d", want, set.Len())
	}
}

// AssertDeepEqual compares two arbitrary values with go-cmp.
func AssertDeepEqual(t *testing.T, want, got interface{}, context string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", context, diff)
	}
}
