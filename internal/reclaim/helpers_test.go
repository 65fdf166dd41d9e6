package reclaim

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const root = "/data"

// fakeSpace reports a free byte count that grows as files are removed
// through trackingFs, unless lagging.
type fakeSpace struct {
	free    int64
	lagging bool
	calls   int
	err     error
}

func (s *fakeSpace) FreeBytes(path string) (int64, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.free, nil
}

// trackingFs records removals and credits the removed bytes to space.
type trackingFs struct {
	afero.Fs
	space    *fakeSpace
	removed  []string
	failOn   map[string]error
	statFail map[string]error
}

func (fs *trackingFs) Remove(name string) error {
	if err := fs.failOn[name]; err != nil {
		return err
	}
	info, err := fs.Fs.Stat(name)
	if err != nil {
		return err
	}
	if err := fs.Fs.Remove(name); err != nil {
		return err
	}
	fs.removed = append(fs.removed, name)
	if !fs.space.lagging {
		fs.space.free += info.Size()
	}
	return nil
}

func (fs *trackingFs) Stat(name string) (os.FileInfo, error) {
	if err := fs.statFail[name]; err != nil {
		return nil, err
	}
	return fs.Fs.Stat(name)
}

type fixture struct {
	fs     *trackingFs
	space  *fakeSpace
	logger *logrus.Logger
	hook   *test.Hook
	mtimes map[string]time.Time
}

func newFixture(t *testing.T, free int64) *fixture {
	t.Helper()
	space := &fakeSpace{free: free}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &fixture{
		fs: &trackingFs{
			Fs:       afero.NewMemMapFs(),
			space:    space,
			failOn:   map[string]error{},
			statFail: map[string]error{},
		},
		space:  space,
		logger: logger,
		hook:   hook,
		mtimes: map[string]time.Time{},
	}
}

// file creates root-relative name with the given size and mtime in seconds.
func (f *fixture) file(t *testing.T, name string, size int, mtime float64) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, f.fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(f.fs, path, make([]byte, size), 0644))
	ts := time.Unix(0, int64(mtime*1e9))
	require.NoError(t, f.fs.Chtimes(path, ts, ts))
	f.mtimes[path] = ts
	return path
}

func (f *fixture) reclaimer() *Reclaimer {
	return &Reclaimer{Fs: f.fs, Space: f.space, Logger: f.logger}
}

func (f *fixture) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs.Fs, path)
	require.NoError(t, err)
	return ok
}

func (f *fixture) messages(level logrus.Level) []string {
	var out []string
	for _, e := range f.hook.AllEntries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func request(target int64, filter string, mode TrackingMode) Request {
	return Request{
		Root:       root,
		TargetFree: target,
		Filter:     regexp.MustCompile(`^(?:` + filter + `)`),
		Mode:       mode,
	}
}

var errPermission = errors.New("permission denied")
