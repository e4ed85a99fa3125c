package board

import "github.com/fpgatools/xsboard/pkg/xserr"

// AuxJTAGFlag reports whether the auxiliary JTAG cable port is enabled.
func (b *Board) AuxJTAGFlag() (bool, error) {
	on, err := b.micro.JTAGCableFlag()
	if err != nil {
		return false, xserr.Majorf("board: query auxiliary JTAG flag: %v", err)
	}
	return on, nil
}

// SetAuxJTAGFlag sets the auxiliary JTAG cable flag and returns the state
// it settled at.
func (b *Board) SetAuxJTAGFlag(on bool) (bool, error) {
	var err error
	if on {
		err = b.micro.EnableJTAGCable()
	} else {
		err = b.micro.DisableJTAGCable()
	}
	if err != nil {
		return false, xserr.Majorf("board: set auxiliary JTAG flag: %v", err)
	}
	return b.AuxJTAGFlag()
}

// ToggleAuxJTAGFlag inverts the auxiliary JTAG cable flag and returns the
// new state.
func (b *Board) ToggleAuxJTAGFlag() (bool, error) {
	on, err := b.AuxJTAGFlag()
	if err != nil {
		return false, err
	}
	return b.SetAuxJTAGFlag(!on)
}

// FlashFlag reports whether the configuration flash is enabled. On variants
// whose flash is permanently wired in it is always true.
func (b *Board) FlashFlag() (bool, error) {
	if !b.desc.FlashToggleable {
		return true, nil
	}
	on, err := b.micro.CfgFlashFlag()
	if err != nil {
		return false, xserr.Majorf("board: query flash flag: %v", err)
	}
	return on, nil
}

// SetFlashFlag sets the flash-enable flag and returns the state it settled
// at. On permanently enabled variants it changes nothing and reports true.
func (b *Board) SetFlashFlag(on bool) (bool, error) {
	if !b.desc.FlashToggleable {
		return true, nil
	}
	var err error
	if on {
		err = b.micro.EnableCfgFlash()
	} else {
		err = b.micro.DisableCfgFlash()
	}
	if err != nil {
		return false, xserr.Majorf("board: set flash flag: %v", err)
	}
	return b.FlashFlag()
}

// ToggleFlashFlag inverts the flash-enable flag and returns the new state.
func (b *Board) ToggleFlashFlag() (bool, error) {
	on, err := b.FlashFlag()
	if err != nil {
		return false, err
	}
	return b.SetFlashFlag(!on)
}

// withFlashEnabled runs fn with the configuration flash enabled and puts
// the flag back to its prior state afterwards, on every path out of fn.
func (b *Board) withFlashEnabled(fn func() error) (err error) {
	if !b.desc.FlashToggleable {
		return fn()
	}
	saved, ferr := b.micro.CfgFlashFlag()
	if ferr != nil {
		return xserr.Majorf("board: query flash flag: %v", ferr)
	}
	if ferr := b.micro.EnableCfgFlash(); ferr != nil {
		return xserr.Majorf("board: enable configuration flash: %v", ferr)
	}
	defer func() {
		if rerr := b.micro.SetCfgFlashFlag(saved); rerr != nil && err == nil {
			err = xserr.Majorf("board: restore flash flag: %v", rerr)
		}
	}()
	return fn()
}
