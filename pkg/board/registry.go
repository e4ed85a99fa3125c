package board

import (
	"errors"

	"github.com/golang/glog"

	"github.com/fpgatools/xsboard/pkg/config"
	"github.com/fpgatools/xsboard/pkg/progress"
	"github.com/fpgatools/xsboard/pkg/xserr"
)

// ErrNotFound is returned when no catalog variant matches the attached
// hardware, or when no link id was given.
var ErrNotFound = errors.New("board: no board found")

// Opener constructs a board for one descriptor during identification.
type Opener func(*Descriptor) (*Board, error)

// Identify finds the board on a USB link. With a variant name the board is
// constructed directly without probing; otherwise each catalog entry is
// tried in probe order until one's connectivity check passes. A negative
// link id reports ErrNotFound without touching any hardware.
func Identify(linkID int, name string, cfg *config.Config, rep progress.Reporter) (*Board, error) {
	return IdentifyWith(linkID, name, func(d *Descriptor) (*Board, error) {
		return Open(linkID, d, cfg, rep)
	})
}

// IdentifyWith is Identify with board construction under the caller's
// control.
func IdentifyWith(linkID int, name string, open Opener) (*Board, error) {
	if linkID < 0 {
		return nil, ErrNotFound
	}

	if name != "" {
		desc := Lookup(name)
		if desc == nil {
			return nil, xserr.Majorf("board: unknown board variant %q", name)
		}
		b, err := open(desc)
		if err != nil {
			return nil, xserr.Majorf("board: open %s on link %d: %v", desc.Name, linkID, err)
		}
		return b, nil
	}

	for _, desc := range Catalog {
		b, err := open(desc)
		if err != nil {
			if xserr.IsMajor(err) {
				return nil, err
			}
			glog.V(1).Infof("board: cannot construct %s on link %d: %v", desc.Name, linkID, err)
			continue
		}
		ok, err := b.Connected()
		if err != nil {
			b.Close()
			if xserr.IsMajor(err) {
				return nil, err
			}
			glog.V(1).Infof("board: probe of %s failed: %v", desc.Name, err)
			continue
		}
		if ok {
			glog.V(1).Infof("board: link %d identified as %s", linkID, desc.Name)
			return b, nil
		}
		b.Close()
	}
	return nil, ErrNotFound
}
