// Package micro drives the supervisory PIC microcontroller on XESS boards:
// firmware reflash, the auxiliary JTAG cable switch, and the configuration
// flash enable switch.
package micro

// Controller is the microcontroller command set consumed by the board
// workflows.
type Controller interface {
	// EnterReflashMode switches the microcontroller into its bootloader.
	EnterReflashMode() error
	// Program writes a firmware image to the microcontroller flash.
	Program(image []byte) error
	// Verify compares the microcontroller flash against an image. A
	// mismatch is reported as a minor error.
	Verify(image []byte) error
	// EnterUserMode leaves the bootloader and restarts the firmware.
	EnterUserMode() error

	EnableJTAGCable() error
	DisableJTAGCable() error
	JTAGCableFlag() (bool, error)

	EnableCfgFlash() error
	DisableCfgFlash() error
	CfgFlashFlag() (bool, error)
	// SetCfgFlashFlag restores a previously sampled flag value.
	SetCfgFlashFlag(enabled bool) error
}
