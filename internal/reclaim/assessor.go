package reclaim

import "fmt"

// Assessor decides whether enough space is free.
type Assessor struct {
	space   SpaceReporter
	root    string
	target  int64
	deficit int64
}

// NewAssessor builds an assessor from the free space observed at the start of
// the run.
func NewAssessor(space SpaceReporter, root string, target, initialFree int64) *Assessor {
	return &Assessor{
		space:   space,
		root:    root,
		target:  target,
		deficit: target - initialFree,
	}
}

// Deficit is the number of bytes that had to be freed at the start of the run.
func (a *Assessor) Deficit() int64 {
	return a.deficit
}

// Sufficient reports whether the target is met. TrackBytesDeleted compares
// freed against the initial deficit without touching the filesystem; any
// other mode queries the live free space.
func (a *Assessor) Sufficient(mode TrackingMode, freed int64) (bool, error) {
	if mode == TrackBytesDeleted {
		return a.deficit-freed <= 0, nil
	}
	free, err := a.FreeBytes()
	if err != nil {
		return false, err
	}
	return free >= a.target, nil
}

// FreeBytes queries the live free space of the root's filesystem.
func (a *Assessor) FreeBytes() (int64, error) {
	free, err := a.space.FreeBytes(a.root)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFreeSpace, err)
	}
	return free, nil
}
