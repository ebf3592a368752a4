package hooks

import (
	"errors"
	"testing"
)

func TestInvokeRunsBeforeAndAfter(t *testing.T) {
	r := New()
	var order []string

	r.Before("AddNode", func(inv Invocation) { order = append(order, "before") })
	r.After("AddNode", func(inv Invocation) { order = append(order, "after") })

	err := r.Invoke("AddNode", "A", func() error {
		order = append(order, "fn")
		return nil
	})
	if err != nil {
		t.Fatalf("Invoke returned an error: %v", err)
	}

	want := []string{"before", "fn", "after"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestInvokePropagatesError(t *testing.T) {
	r := New()
	wantErr := errors.New("boom")

	var seenErr error
	r.After("AddNode", func(inv Invocation) { seenErr = inv.Err })

	err := r.Invoke("AddNode", nil, func() error { return wantErr })
	if err != wantErr {
		t.Errorf("Invoke returned %v, want %v", err, wantErr)
	}
	if seenErr != wantErr {
		t.Errorf("post observer saw err %v, want %v", seenErr, wantErr)
	}
}

func TestObserversAreKeyedByOperation(t *testing.T) {
	r := New()
	var calls int
	r.Before("AddNode", func(inv Invocation) { calls++ })

	r.Invoke("AddEdge", nil, func() error { return nil })

	if calls != 0 {
		t.Errorf("observer registered for AddNode should not fire for AddEdge, got %d calls", calls)
	}
}

func TestInvocationsShareACorrelationID(t *testing.T) {
	r := New()
	var beforeID, afterID string
	r.Before("AddNode", func(inv Invocation) { beforeID = inv.ID.String() })
	r.After("AddNode", func(inv Invocation) { afterID = inv.ID.String() })

	r.Invoke("AddNode", nil, func() error { return nil })

	if beforeID == "" || beforeID != afterID {
		t.Errorf("before/after correlation IDs should match, got %q and %q", beforeID, afterID)
	}
}
