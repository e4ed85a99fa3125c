package board

import (
	"bytes"
	"fmt"

	"github.com/golang/glog"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

// minJTAGVersion is the first firmware release with the USB-to-JTAG bridge.
const minJTAGVersion = 1.2

// Info is the identity record a board reports over USB.
type Info struct {
	ID           string // four hex digits, e.g. "0102"
	VersionMajor int
	VersionMinor int
	Description  string
}

// Version formats the firmware version as "major.minor".
func (i Info) Version() string {
	return fmt.Sprintf("%d.%d", i.VersionMajor, i.VersionMinor)
}

// VersionNumber returns the version as a comparable number. Minor versions
// are single decimal digits, so "1.2" compares as 1.2.
func (i Info) VersionNumber() float64 {
	return float64(i.VersionMajor) + float64(i.VersionMinor)/10
}

// Info fetches and decodes the board information frame. A transport failure
// is retried once after a device reset; a second failure is fatal. A frame
// with a bad checksum is a recoverable error since a retry may see the
// record after a firmware update completes it.
func (b *Board) Info() (Info, error) {
	frame, err := b.link.InfoFrame()
	if err != nil {
		glog.V(1).Infof("board: info fetch failed (%v), resetting link %d", err, b.link.ID())
		if rerr := b.link.Reset(); rerr != nil {
			return Info{}, xserr.Majorf("board: reset after failed info fetch: %v", rerr)
		}
		frame, err = b.link.InfoFrame()
		if err != nil {
			return Info{}, xserr.Majorf("board: unable to get board information: %v", err)
		}
	}
	return parseInfoFrame(frame)
}

// FirmwareVersion reports the microcontroller firmware version.
func (b *Board) FirmwareVersion() (float64, error) {
	info, err := b.Info()
	if err != nil {
		return 0, err
	}
	return info.VersionNumber(), nil
}

// parseInfoFrame validates and decodes an information frame. The layout is
// byte 0 checksum filler, bytes 1-2 board id, bytes 3-4 version, then a
// zero-terminated description. All bytes must sum to 0 mod 256.
func parseInfoFrame(frame []byte) (Info, error) {
	if len(frame) < 6 {
		return Info{}, xserr.Majorf("board: information frame truncated to %d bytes", len(frame))
	}
	var sum uint8
	for _, v := range frame {
		sum += v
	}
	if sum != 0 {
		return Info{}, xserr.Minorf("board: board information is corrupted")
	}

	desc := frame[5:]
	end := bytes.IndexByte(desc, 0)
	if end < 0 {
		return Info{}, xserr.Majorf("board: description field is not terminated")
	}
	return Info{
		ID:           fmt.Sprintf("%02x%02x", frame[1], frame[2]),
		VersionMajor: int(frame[3]),
		VersionMinor: int(frame[4]),
		Description:  string(desc[:end]),
	}, nil
}
