package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestWrapNilReturnsNil(t *testing.T) {
	if err := Wrap(KindStorage, "op", "message", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapKeepsExistingTypedError(t *testing.T) {
	inner := New(KindNotFound, "store.get", "tenant missing")
	outer := Wrap(KindStorage, "registry.tenant", "lookup failed", inner)

	if outer != inner {
		t.Fatalf("expected existing typed error to be preserved, got %v", outer)
	}
	if !IsKind(outer, KindNotFound) {
		t.Fatalf("expected not-found kind, got %s", outer.Kind)
	}
}

func TestIsKindWalksChain(t *testing.T) {
	base := New(KindUnavailable, "store.get", "backend down")
	wrapped := fmt.Errorf("resolving device: %w", base)

	if !IsKind(wrapped, KindUnavailable) {
		t.Fatalf("expected unavailable kind in chain")
	}
	if IsKind(wrapped, KindNotFound) {
		t.Fatalf("did not expect not-found kind")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(stderrors.New("plain")); got != KindUnknown {
		t.Fatalf("expected unknown kind, got %s", got)
	}
	err := fmt.Errorf("outer: %w", New(KindConflict, "store.create", "duplicate"))
	if got := KindOf(err); got != KindConflict {
		t.Fatalf("expected conflict kind, got %s", got)
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := &Error{Kind: KindUnavailable, Op: "store.get", Message: "backend unreachable", Cause: cause}

	want := "[unavailable:store.get] backend unreachable: dial tcp: refused"
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
}
