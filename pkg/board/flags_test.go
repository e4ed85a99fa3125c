package board

import "testing"

func TestAuxJTAGFlagRoundTrip(t *testing.T) {
	f := newFixture(t, "XuLA-200")

	for _, want := range []bool{true, false, true} {
		got, err := f.b.SetAuxJTAGFlag(want)
		if err != nil {
			t.Fatalf("SetAuxJTAGFlag(%v): %v", want, err)
		}
		if got != want {
			t.Fatalf("SetAuxJTAGFlag(%v) = %v", want, got)
		}
		read, err := f.b.AuxJTAGFlag()
		if err != nil {
			t.Fatalf("AuxJTAGFlag: %v", err)
		}
		if read != want {
			t.Fatalf("AuxJTAGFlag = %v after setting %v", read, want)
		}
	}
}

func TestToggleFlagsTwiceRestoresState(t *testing.T) {
	f := newFixture(t, "XuLA-200")
	f.mc.JTAGCable = true
	f.mc.CfgFlash = false

	for i := 0; i < 2; i++ {
		if _, err := f.b.ToggleAuxJTAGFlag(); err != nil {
			t.Fatalf("ToggleAuxJTAGFlag: %v", err)
		}
		if _, err := f.b.ToggleFlashFlag(); err != nil {
			t.Fatalf("ToggleFlashFlag: %v", err)
		}
	}

	if !f.mc.JTAGCable {
		t.Fatalf("JTAG cable flag did not return to enabled")
	}
	if f.mc.CfgFlash {
		t.Fatalf("flash flag did not return to disabled")
	}
}

func TestFlashFlagFixedVariantIsAlwaysEnabled(t *testing.T) {
	f := newFixture(t, "XuLA2-LX25")

	on, err := f.b.FlashFlag()
	if err != nil || !on {
		t.Fatalf("FlashFlag = %v, %v; want true", on, err)
	}
	on, err = f.b.SetFlashFlag(false)
	if err != nil || !on {
		t.Fatalf("SetFlashFlag(false) = %v, %v; want true", on, err)
	}
	on, err = f.b.ToggleFlashFlag()
	if err != nil || !on {
		t.Fatalf("ToggleFlashFlag = %v, %v; want true", on, err)
	}
	if len(f.mc.Calls) != 0 {
		t.Fatalf("fixed-flash variant touched the microcontroller: %v", f.mc.Calls)
	}
}
