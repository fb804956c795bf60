package ingestion

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-elva/data-processing/internal/diag"
)

// recordingSink captures emitted entries for assertions.
type recordingSink struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	level   diag.Level
	message string
}

func (s *recordingSink) Emit(level diag.Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedEntry{level: level, message: message})
}

func (s *recordingSink) warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var msgs []string
	for _, e := range s.entries {
		if e.level == diag.Warning {
			msgs = append(msgs, e.message)
		}
	}
	return msgs
}

// writeInstance lays out an instance bundle under root and returns the
// instance directory path.
func writeInstance(t *testing.T, root, base string, withTxt, withLog bool) string {
	t.Helper()
	dir := filepath.Join(root, base)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	if withTxt {
		require.NoError(t, os.WriteFile(dir+".txt", []byte("Computer Name: 12-34567\n"), 0o644))
	}
	if withLog {
		require.NoError(t, os.WriteFile(dir+".log", []byte("01/02/2017 10:00:00 started\n"), 0o644))
	}
	return dir
}

func TestScanDiscoversCompleteBundles(t *testing.T) {
	root := t.TempDir()
	dir := writeInstance(t, root, "Unit_1_123456_01-02-2017", true, true)
	sink := &recordingSink{}

	candidates, err := NewDirScanner(sink).ScanForInstances(root)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, dir, candidates[0].Dir)
	assert.Equal(t, dir+".txt", candidates[0].TxtPath)
	assert.Equal(t, []string{dir + ".log"}, candidates[0].LogPaths)
	assert.Empty(t, sink.warnings())
}

func TestScanIgnoresLockFiles(t *testing.T) {
	root := t.TempDir()
	dir := writeInstance(t, root, "Unit_1_123456_01-02-2017", true, true)
	require.NoError(t, os.WriteFile(dir+".log.lck", nil, 0o644))
	sink := &recordingSink{}

	candidates, err := NewDirScanner(sink).ScanForInstances(root)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, []string{dir + ".log"}, candidates[0].LogPaths)
}

func TestScanExcludesMissingCompanions(t *testing.T) {
	root := t.TempDir()
	writeInstance(t, root, "Unit_1_111111_01-02-2017", false, true)
	writeInstance(t, root, "Unit_2_222222_01-02-2017", true, false)
	sink := &recordingSink{}

	candidates, err := NewDirScanner(sink).ScanForInstances(root)
	require.NoError(t, err)

	assert.Empty(t, candidates)
	warnings := sink.warnings()
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "Unit_1_111111_01-02-2017.txt does not exist")
	assert.Contains(t, warnings[1], "Unit_2_222222_01-02-2017.log does not exist")
}

func TestScanExcludesSentinelPaths(t *testing.T) {
	root := t.TempDir()
	writeInstance(t, root, "Unit_1_000000_01-02-2017", true, true)
	sink := &recordingSink{}

	candidates, err := NewDirScanner(sink).ScanForInstances(root)
	require.NoError(t, err)

	assert.Empty(t, candidates, "sentinel-marked bundles never reach processing")
	require.Len(t, sink.warnings(), 1)
	assert.Contains(t, sink.warnings()[0], "invalid-recording marker")
}

func TestScanIgnoresUnrelatedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-an-instance"), 0o755))
	sink := &recordingSink{}

	candidates, err := NewDirScanner(sink).ScanForInstances(root)
	require.NoError(t, err)

	assert.Empty(t, candidates)
	assert.Empty(t, sink.entries)
}
