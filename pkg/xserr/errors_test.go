package xserr

import (
	"errors"
	"fmt"
	"testing"
)

func TestSeverityClassification(t *testing.T) {
	major := Majorf("link dead")
	minor := Minorf("checksum mismatch")

	if !IsMajor(major) || IsMinor(major) {
		t.Fatalf("major error misclassified: %v", major)
	}
	if !IsMinor(minor) || IsMajor(minor) {
		t.Fatalf("minor error misclassified: %v", minor)
	}
	if IsMajor(nil) || IsMinor(nil) {
		t.Fatalf("nil error must have no severity")
	}
}

func TestWrappedSeveritySurvivesChain(t *testing.T) {
	inner := Minorf("diagnostic failed")
	outer := fmt.Errorf("self test: %w", inner)

	if !IsMinor(outer) {
		t.Fatalf("severity lost through wrapping: %v", outer)
	}
	if IsMajor(outer) {
		t.Fatalf("wrong severity through wrapping: %v", outer)
	}
}

func TestMajorfPreservesCause(t *testing.T) {
	cause := errors.New("usb timeout")
	err := Majorf("info frame: %w", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause not unwrappable from %v", err)
	}
	if got := err.Error(); got != "info frame: usb timeout" {
		t.Fatalf("Error() = %q", got)
	}
}
