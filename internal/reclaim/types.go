package reclaim

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrScan      = errors.New("scan failed")
	ErrDelete    = errors.New("delete failed")
	ErrFreeSpace = errors.New("free space query failed")
)

// TrackingMode selects how progress towards the free space target is judged.
type TrackingMode int

const (
	// TrackFilesystemFree re-queries the filesystem before every deletion.
	TrackFilesystemFree TrackingMode = iota
	// TrackBytesDeleted sums the sizes of removed files against the deficit
	// measured at start. Useful on filesystems like ZFS whose free space
	// counters lag behind deletions.
	TrackBytesDeleted
)

func (m TrackingMode) String() string {
	switch m {
	case TrackFilesystemFree:
		return "filesystem-free-space"
	case TrackBytesDeleted:
		return "bytes-deleted-total"
	default:
		return fmt.Sprintf("TrackingMode(%d)", int(m))
	}
}

// SpaceReporter answers how many bytes are free on the filesystem holding a
// path.
type SpaceReporter interface {
	FreeBytes(path string) (int64, error)
}

// Request is the read-only input of a run.
type Request struct {
	Root       string
	TargetFree int64
	Filter     *regexp.Regexp // matched against the full path
	Mode       TrackingMode
}

// Candidate is a file eligible for deletion, with size and modification time
// as of scan time.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// State is the progress of a run.
type State struct {
	BytesFreed  int64
	Removed     int
	LastModTime time.Time // zero until the first removal
}

func (s *State) record(c Candidate) {
	s.BytesFreed += c.Size
	s.Removed++
	s.LastModTime = c.ModTime
}

// Result describes a finished (or aborted) run.
type Result struct {
	State

	InitialFree int64
	FinalFree   int64
	Deficit     int64 // target minus InitialFree, negative when already met
	Scanned     int

	AlreadySatisfied bool
	Sufficient       bool
}

// FilesystemFreed is the change in free space the filesystem reported over the
// run. It can differ from BytesFreed because of lag or outside activity.
func (r *Result) FilesystemFreed() int64 {
	return r.FinalFree - r.InitialFree
}
