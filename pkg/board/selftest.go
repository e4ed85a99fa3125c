package board

import (
	"time"

	"github.com/golang/glog"

	"github.com/fpgatools/xsboard/pkg/xserr"
)

// The diagnostic module publishes a fixed signature so a stale or foreign
// bitstream is detected before its status fields are trusted.
const (
	signatureBase   = 0xA50000A5
	signatureTagBit = 8
	testSignature   = signatureBase | 1<<signatureTagBit
)

// Diagnostic progress codes, in the order the test advances.
const (
	testStart uint64 = iota
	testWrite
	testRead
	testDone
)

// SelfTest downloads the diagnostic bitstream and follows the test state
// machine until it finishes or the poll budget runs out. Phase events are
// published only when the reported progress changes, so repeated polls of
// the same state stay silent. A hardware fault found by the test is
// recoverable; a bad signature or an exhausted poll budget is fatal.
func (b *Board) SelfTest(bitstreamPath string) error {
	b.mustFPGA()
	if bitstreamPath == "" {
		bitstreamPath = b.images.TestBitstream
	}
	if err := b.configure(bitstreamPath); err != nil {
		return err
	}

	ch, err := b.newTestChannel()
	if err != nil {
		return xserr.Majorf("board: open diagnostic channel: %v", err)
	}
	// Pulse the run input to restart the test from a known state.
	if err := ch.Write(1); err != nil {
		return xserr.Majorf("board: start diagnostic: %v", err)
	}
	if err := ch.Write(0); err != nil {
		return xserr.Majorf("board: start diagnostic: %v", err)
	}

	b.progress.Publish("Writing SDRAM")
	prev := testStart
	for poll := 0; poll < b.pollLimit; poll++ {
		vals, err := ch.Read()
		if err != nil {
			return xserr.Majorf("board: poll diagnostic: %v", err)
		}
		if len(vals) != 3 {
			return xserr.Majorf("board: diagnostic returned %d fields, want 3", len(vals))
		}
		prog, failed, sig := vals[0], vals[1], vals[2]
		if sig != testSignature {
			return xserr.Majorf("board: %s is not configured with the diagnostic bitstream (signature %#08x)",
				b.desc.Name, sig)
		}

		if prog != prev {
			glog.V(2).Infof("board: diagnostic progress %d -> %d after %d polls", prev, prog, poll)
			if prog == testRead {
				b.progress.Publish("Reading SDRAM")
			}
			if failed != 0 {
				b.progress.Publish("Test done")
				return xserr.Minorf("board: %s failed diagnostic test", b.desc.Name)
			}
			if prog == testDone {
				b.progress.Publish("Test done")
				return nil
			}
		}
		prev = prog
		time.Sleep(b.pollInterval)
	}
	return xserr.Majorf("board: diagnostic test made no progress after %d polls", b.pollLimit)
}
