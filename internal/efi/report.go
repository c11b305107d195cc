package efi

import (
	"fmt"

	"go.uber.org/multierr"
)

// Skip records a driver that was dropped for a recoverable reason.
type Skip struct {
	Module string
	Reason error
}

// Collision records a driver whose registration was discarded because a
// later driver was loaded at the same base address.
type Collision struct {
	BaseAddress string
	Dropped     string // debug path of the earlier driver
	Kept        string // debug path of the later driver
}

// Report summarises one symbol loading run.
type Report struct {
	Arch               Arch
	Found              int // distinct drivers accepted from the log
	Loaded             []ResolvedModule
	Skipped            []Skip
	Collisions         []Collision
	PaginationRestored bool
	RemoteConnected    bool // target remote accepted, possibly only recorded for replay
}

// Err combines every skip reason into one error, or returns nil.
func (r *Report) Err() error {
	var err error
	for _, s := range r.Skipped {
		err = multierr.Append(err, fmt.Errorf("%s: %w", s.Module, s.Reason))
	}
	return err
}
