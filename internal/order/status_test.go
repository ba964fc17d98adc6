package order

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusShipped, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCancelOnlyFromPending(t *testing.T) {
	if !CanTransition(StatusPending, StatusCancelled) {
		t.Fatal("pending orders must be cancellable")
	}
	for _, from := range []Status{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if CanTransition(from, StatusCancelled) {
			t.Errorf("%s must not be cancellable", from)
		}
	}
}

func TestTerminalStatesFrozen(t *testing.T) {
	for _, to := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered} {
		if CanTransition(StatusCancelled, to) {
			t.Errorf("cancelled must not transition to %s", to)
		}
		if to != StatusDelivered && CanTransition(StatusDelivered, to) {
			t.Errorf("delivered must not transition to %s", to)
		}
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	if CanTransition(StatusPending, Status("returned")) {
		t.Fatal("unknown target status must be rejected")
	}
	if CanTransition(Status(""), StatusProcessing) {
		t.Fatal("unknown source status must be rejected")
	}
}
