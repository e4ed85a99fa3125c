package board

import (
	"os"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

// UpdateFirmware reflashes the microcontroller from an image file, or from
// the variant's bundled image when path is empty. The auxiliary JTAG cable
// port is disabled afterwards so the fresh firmware starts with the USB
// bridge in control of the JTAG pins.
func (b *Board) UpdateFirmware(path string) error {
	image, err := b.loadFirmware(path)
	if err != nil {
		return err
	}
	b.progress.Publish("Updating firmware")
	if err := b.micro.EnterReflashMode(); err != nil {
		return xserr.Majorf("board: enter reflash mode: %v", err)
	}
	if err := b.micro.Program(image); err != nil {
		return xserr.Majorf("board: program firmware: %v", err)
	}
	if err := b.micro.EnterUserMode(); err != nil {
		return xserr.Majorf("board: return to user mode: %v", err)
	}
	if err := b.micro.DisableJTAGCable(); err != nil {
		return xserr.Majorf("board: disable auxiliary JTAG cable: %v", err)
	}
	b.progress.Publish("Firmware update done")
	return nil
}

// VerifyFirmware compares the microcontroller flash against an image file,
// or against the variant's bundled image when path is empty. A content
// mismatch is recoverable; the firmware still runs.
func (b *Board) VerifyFirmware(path string) error {
	image, err := b.loadFirmware(path)
	if err != nil {
		return err
	}
	b.progress.Publish("Verifying firmware")
	if err := b.micro.EnterReflashMode(); err != nil {
		return xserr.Majorf("board: enter reflash mode: %v", err)
	}
	if err := b.micro.Verify(image); err != nil {
		if xserr.IsMinor(err) {
			return err
		}
		return xserr.Majorf("board: verify firmware: %v", err)
	}
	if err := b.micro.EnterUserMode(); err != nil {
		return xserr.Majorf("board: return to user mode: %v", err)
	}
	b.progress.Publish("Firmware verification done")
	return nil
}

func (b *Board) loadFirmware(path string) ([]byte, error) {
	if path == "" {
		path = b.images.Firmware
	}
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, xserr.Majorf("board: read firmware image: %v", err)
	}
	return image, nil
}
