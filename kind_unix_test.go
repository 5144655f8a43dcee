//go:build !windows

package sigflow

import (
	"errors"
	"slices"
	"testing"

	"golang.org/x/sys/unix"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Kind
		wantErr bool
	}{
		{"canonical", "SIGUSR1", SIGUSR1, false},
		{"lowercase", "sigterm", SIGTERM, false},
		{"mixed case", "SigHup", SIGHUP, false},
		{"without prefix", "usr2", SIGUSR2, false},
		{"surrounding space", "  SIGINT ", SIGINT, false},
		{"unknown name", "SIGBOGUS", 0, true},
		{"kill not catchable", "SIGKILL", 0, true},
		{"stop not catchable", "SIGSTOP", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSignal) {
					t.Fatalf("ParseKind(%q) err = %v, want ErrInvalidSignal", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{SIGHUP, "SIGHUP"},
		{SIGUSR1, "SIGUSR1"},
		{SIGSYS, "SIGSYS"},
		{Kind(9999), "KIND(9999)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestKindSupported(t *testing.T) {
	for _, k := range []Kind{SIGHUP, SIGTERM, SIGUSR1, SIGWINCH} {
		if !k.Supported() {
			t.Errorf("%v.Supported() = false, want true", k)
		}
	}
	for _, k := range []Kind{Kind(unix.SIGKILL), Kind(unix.SIGSTOP), Kind(0), Kind(9999)} {
		if k.Supported() {
			t.Errorf("Kind(%d).Supported() = true, want false", int(k))
		}
	}
}

func TestKindsSortedAndComplete(t *testing.T) {
	kinds := Kinds()
	if len(kinds) == 0 {
		t.Fatal("Kinds() is empty")
	}
	if !slices.IsSorted(kinds) {
		t.Error("Kinds() not in ascending order")
	}
	for _, want := range []Kind{SIGHUP, SIGINT, SIGTERM, SIGUSR1, SIGUSR2} {
		if !slices.Contains(kinds, want) {
			t.Errorf("Kinds() missing %v", want)
		}
	}
	if slices.Contains(kinds, Kind(unix.SIGKILL)) {
		t.Error("Kinds() contains SIGKILL")
	}
}
