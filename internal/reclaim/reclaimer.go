package reclaim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/tarasglek/free-disk/internal/metrics"
)

// Reclaimer deletes the oldest files under a root until enough space is free.
type Reclaimer struct {
	Fs      afero.Fs
	Space   SpaceReporter
	Logger  logrus.FieldLogger
	Metrics *metrics.Run // optional
}

// Run performs one reclamation pass. On error the returned result holds the
// progress made before the failure; files already removed stay removed.
func (r *Reclaimer) Run(req Request) (*Result, error) {
	log := r.Logger.WithFields(logrus.Fields{
		"root": req.Root,
		"mode": req.Mode.String(),
	})

	initialFree, err := r.Space.FreeBytes(req.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFreeSpace, err)
	}
	assessor := NewAssessor(r.Space, req.Root, req.TargetFree, initialFree)
	res := &Result{
		InitialFree: initialFree,
		FinalFree:   initialFree,
		Deficit:     assessor.Deficit(),
	}
	r.Metrics.Start(req.TargetFree, initialFree)

	log.WithFields(logrus.Fields{
		"free_bytes":        initialFree,
		"target_free_bytes": req.TargetFree,
	}).Debugf("Required free bytes: %d. %d bytes to free", req.TargetFree, res.Deficit)

	// The pre-flight check always asks the filesystem.
	done, err := assessor.Sufficient(TrackFilesystemFree, 0)
	if err != nil {
		return res, err
	}
	if done {
		log.Debug("Requirement already fulfilled")
		res.AlreadySatisfied = true
		res.Sufficient = true
		r.Metrics.Finish(initialFree, true, time.Now())
		return res, nil
	}

	candidates, err := Scan(r.Fs, req.Root, req.Filter, log)
	if err != nil {
		return res, err
	}
	SortOldestFirst(candidates)
	res.Scanned = len(candidates)
	r.Metrics.Scanned(len(candidates))

	if err := r.deleteOldest(req, assessor, candidates, res, log); err != nil {
		return res, err
	}
	if err := r.report(req, assessor, res, log); err != nil {
		return res, err
	}
	return res, nil
}

// deleteOldest removes candidates in order until the assessor is satisfied
// or the candidates run out.
func (r *Reclaimer) deleteOldest(req Request, assessor *Assessor, candidates []Candidate, res *Result, log logrus.FieldLogger) error {
	for _, c := range candidates {
		done, err := assessor.Sufficient(req.Mode, res.BytesFreed)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		if err := r.Fs.Remove(c.Path); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDelete, c.Path, err)
		}
		res.record(c)
		r.Metrics.FileRemoved(c.Size, c.ModTime)

		log.WithFields(logrus.Fields{
			"file":  c.Path,
			"size":  c.Size,
			"mtime": c.ModTime.UTC().Format(time.RFC3339Nano),
		}).Debugf("Freed %d/%d bytes by removing file", c.Size, res.BytesFreed)
	}
	return nil
}

// report logs the outcome and runs the final sufficiency check.
func (r *Reclaimer) report(req Request, assessor *Assessor, res *Result, log logrus.FieldLogger) error {
	finalFree, err := assessor.FreeBytes()
	if err != nil {
		return err
	}
	res.FinalFree = finalFree

	if res.Removed == 0 {
		log.Warn("No files to remove")
	} else {
		lastModTime := res.LastModTime.UTC().Format(time.RFC3339)
		log.WithFields(logrus.Fields{
			"removed_files":    res.Removed,
			"last_mtime":       lastModTime,
			"deleted_bytes":    res.BytesFreed,
			"filesystem_freed": res.FilesystemFreed(),
		}).Infof("Removed %d file(s) with modification date <= %s. Deleted %d bytes. Filesystem freed %d bytes.",
			res.Removed, lastModTime, res.BytesFreed, res.FilesystemFreed())
	}

	res.Sufficient, err = assessor.Sufficient(req.Mode, res.BytesFreed)
	if err != nil {
		return err
	}
	r.Metrics.Finish(res.FinalFree, res.Sufficient, time.Now())
	return nil
}
