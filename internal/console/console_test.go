package console

import "testing"

func TestEventString(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{CtrlC, "CTRL_C"},
		{Break, "CTRL_BREAK"},
		{Close, "CLOSE"},
		{Logoff, "LOGOFF"},
		{Shutdown, "SHUTDOWN"},
		{Event(42), "EVENT(42)"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("Event(%d).String() = %q, want %q", int(tt.event), got, tt.want)
		}
	}
}

func TestEventSuppressible(t *testing.T) {
	for _, e := range []Event{CtrlC, Break} {
		if !e.Suppressible() {
			t.Errorf("%v.Suppressible() = false, want true", e)
		}
	}
	for _, e := range []Event{Close, Logoff, Shutdown} {
		if e.Suppressible() {
			t.Errorf("%v.Suppressible() = true, want false", e)
		}
	}
}

func TestMaskOperations(t *testing.T) {
	m := MaskOf(CtrlC, Shutdown)

	if !m.Has(CtrlC) || !m.Has(Shutdown) {
		t.Fatalf("mask missing its own events")
	}
	if m.Has(Break) {
		t.Error("mask contains CTRL_BREAK, want absent")
	}

	m = m.With(Break)
	if !m.Has(Break) {
		t.Error("With(Break) did not add the event")
	}

	m = m.Without(CtrlC)
	if m.Has(CtrlC) {
		t.Error("Without(CtrlC) did not remove the event")
	}
	if !m.Has(Shutdown) {
		t.Error("Without(CtrlC) disturbed an unrelated event")
	}
}
