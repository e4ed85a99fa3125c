package hostio

import "fmt"

// SimChannel is a scripted Channel for unit tests. Reads are served from a
// queue of field tuples; the last tuple repeats once the queue drains, the
// way real hardware keeps reporting the same register contents.
type SimChannel struct {
	// Reads are successive Read results. A nil tuple makes that call fail.
	Reads [][]uint64
	// Writes records every Write call.
	Writes [][]uint64

	readIdx int
}

func (s *SimChannel) Write(vals ...uint64) error {
	s.Writes = append(s.Writes, append([]uint64(nil), vals...))
	return nil
}

func (s *SimChannel) Read() ([]uint64, error) {
	if len(s.Reads) == 0 {
		return nil, fmt.Errorf("hostio: sim has no reads scripted")
	}
	idx := s.readIdx
	if idx >= len(s.Reads) {
		idx = len(s.Reads) - 1
	} else {
		s.readIdx++
	}
	tuple := s.Reads[idx]
	if tuple == nil {
		return nil, fmt.Errorf("hostio: sim read error")
	}
	return append([]uint64(nil), tuple...), nil
}
