package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Unit_1_123456_01-02-2017.log")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseLogAudioReferences(t *testing.T) {
	path := writeLog(t,
		"01/02/2017 10:00:00 session started",
		"01/02/2017 10:00:05 RECORD audio/rec_001.au",
		"some untimed line mentioning rec_002.au",
		"01/02/2017 10:01:00 RECORD audio/rec_001.au",
		"01/02/2017 10:07:03 session stopped",
	)

	facts, err := ParseLog(path)
	require.NoError(t, err)

	// File order, duplicates preserved, token is the last whitespace-
	// delimited field of the matched prefix.
	assert.Equal(t, []string{"audio/rec_001.au", "rec_002.au", "audio/rec_001.au"}, facts.AudioFiles)
}

func TestParseLogSlidesDeduplicated(t *testing.T) {
	path := writeLog(t,
		"01/02/2017 10:00:00 session started",
		"01/02/2017 10:00:10 LOAD XML/ELVA_Unit-One_intro.xml",
		"01/02/2017 10:02:00 *** SLIDE COMPLETED *** XML/ELVA_Unit-One_intro.xml",
		"01/02/2017 10:02:30 LOAD XML/ELVA_Unit-One_review.xml",
		"01/02/2017 10:07:03 session stopped",
	)

	facts, err := ParseLog(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ELVA_Unit-One_intro.xml", "ELVA_Unit-One_review.xml"}, facts.Slides)
}

func TestParseLogTimestamps(t *testing.T) {
	path := writeLog(t,
		"preamble without a timestamp",
		"01/02/2017 10:00:00 session started",
		"noise in between",
		"01/02/2017 10:07:03 session stopped",
	)

	facts, err := ParseLog(path)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2017, 2, 1, 10, 0, 0, 0, time.UTC), facts.StartTime)
	assert.Equal(t, time.Date(2017, 2, 1, 10, 7, 3, 0, time.UTC), facts.EndTime)
}

func TestParseLogSingleTimestamp(t *testing.T) {
	path := writeLog(t, "01/02/2017 10:00:00 only line")

	facts, err := ParseLog(path)
	require.NoError(t, err)
	assert.Equal(t, facts.StartTime, facts.EndTime)
}

func TestParseLogNoTimestampIsMalformed(t *testing.T) {
	path := writeLog(t, "no timestamps anywhere", "RECORD rec_001.au")

	_, err := ParseLog(path)
	assert.ErrorIs(t, err, ErrMalformedLog)
}

func TestParseLogMidLineTimestampIgnored(t *testing.T) {
	path := writeLog(t, "event at 01/02/2017 10:00:00 not at line start")

	_, err := ParseLog(path)
	assert.ErrorIs(t, err, ErrMalformedLog)
}

func TestClassifyMultipleKinds(t *testing.T) {
	kind := Classify("01/02/2017 10:00:05 RECORD audio/rec_001.au")
	assert.True(t, kind.Has(Timestamp))
	assert.True(t, kind.Has(AudioRef))
	assert.False(t, kind.Has(SlideLoad))

	assert.Equal(t, LineKind(0), Classify("nothing of interest"))
}

func TestGetComputer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Unit_1_123456_01-02-2017.txt")
	require.NoError(t, os.WriteFile(path, []byte(
		"capture header\nComputer Name: 12-34567\nComputer Name: 99-99999\n"), 0o644))

	computer, err := GetComputer(path)
	require.NoError(t, err)
	assert.Equal(t, "12-34567", computer)
}

func TestGetComputerAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Unit_1_123456_01-02-2017.txt")
	require.NoError(t, os.WriteFile(path, []byte("no machine identity here\n"), 0o644))

	computer, err := GetComputer(path)
	require.NoError(t, err)
	assert.Empty(t, computer)
}
