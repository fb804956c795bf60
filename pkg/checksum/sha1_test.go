package checksum

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func TestHashFileMatchesRawDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec_001.au")
	writeFile(t, path, "some recorded bytes")

	got, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, sha1Hex([]byte("some recorded bytes")), got)

	again, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, got, again, "re-hashing unchanged content must be stable")
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "nope.au"))
	assert.Error(t, err)
}

func TestHashDirOrdering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.au"), "bbb")
	writeFile(t, filepath.Join(dir, "a.au"), "aaa")
	writeFile(t, filepath.Join(dir, "sub", "c.au"), "ccc")

	got, err := HashDir(dir)
	require.NoError(t, err)

	// Reference: file digests sorted by name, then subdirectory digests
	// sorted by name, concatenated as hex text and digested again.
	subDigest := sha1Hex([]byte(sha1Hex([]byte("ccc"))))
	want := sha1Hex([]byte(sha1Hex([]byte("aaa")) + sha1Hex([]byte("bbb")) + subDigest))
	assert.Equal(t, want, got)
}

func TestHashDirDeepTree(t *testing.T) {
	dir := t.TempDir()
	deep := dir
	for i := 0; i < 64; i++ {
		deep = filepath.Join(deep, "d")
	}
	writeFile(t, filepath.Join(deep, "leaf.au"), "leaf")

	got, err := HashDir(dir)
	require.NoError(t, err)

	want := sha1Hex([]byte("leaf"))
	for i := 0; i <= 64; i++ {
		want = sha1Hex([]byte(want))
	}
	assert.Equal(t, want, got)
}

func TestHashInstanceIndependentOfName(t *testing.T) {
	root := t.TempDir()

	makeBundle := func(base string) (string, string, string) {
		dir := filepath.Join(root, base)
		writeFile(t, filepath.Join(dir, "rec_001.au"), "audio bytes")
		writeFile(t, dir+".log", "01/02/2017 10:00:00 started")
		writeFile(t, dir+".txt", "Computer Name: 12-34567")
		return dir, dir + ".log", dir + ".txt"
	}

	dirA, logA, txtA := makeBundle("Unit_1_123456_01-02-2017")
	dirB, logB, txtB := makeBundle("Copied_9_999999_09-09-2019")

	fpA, err := HashInstance(dirA, logA, txtA)
	require.NoError(t, err)
	fpB, err := HashInstance(dirB, logB, txtB)
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB, "identity derives from content, not paths")
}

func TestHashInstanceOmitsAbsentComponents(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Unit_1_123456_01-02-2017")
	writeFile(t, filepath.Join(dir, "rec_001.au"), "audio bytes")

	fp, err := HashInstance(dir, dir+".log", dir+".txt")
	require.NoError(t, err)

	dirDigest, err := HashDir(dir)
	require.NoError(t, err)
	assert.Equal(t, sha1Hex([]byte(dirDigest)), fp)
}

func TestHashInstanceChangesWithContent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Unit_1_123456_01-02-2017")
	writeFile(t, filepath.Join(dir, "rec_001.au"), "audio bytes")
	writeFile(t, dir+".log", "01/02/2017 10:00:00 started")
	writeFile(t, dir+".txt", "Computer Name: 12-34567")

	before, err := HashInstance(dir, dir+".log", dir+".txt")
	require.NoError(t, err)

	writeFile(t, dir+".log", "01/02/2017 10:00:00 started\n01/02/2017 10:07:03 stopped")
	after, err := HashInstance(dir, dir+".log", dir+".txt")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}
