package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecorderKeepsOrder(t *testing.T) {
	rec := &Recorder{}
	rec.Publish("one")
	rec.Publish("two")
	rec.Publish("three")

	got := rec.Phases()
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Fatalf("phases = %v", got)
	}

	// The returned slice is a copy.
	got[0] = "mutated"
	if rec.Phases()[0] != "one" {
		t.Fatalf("Phases leaked internal slice")
	}
}

func TestPrinterWritesPhase(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{W: &buf}
	p.Publish("Downloading bitstream")

	if !strings.Contains(buf.String(), "Downloading bitstream") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi{a, b}.Publish("phase")

	if len(a.Phases()) != 1 || len(b.Phases()) != 1 {
		t.Fatalf("fan-out missed a sink: %v / %v", a.Phases(), b.Phases())
	}
}
