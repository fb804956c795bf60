// Package audio classifies the recordings referenced by an event log as
// present, missing, or null (on disk but not a recognizable recording).
package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Accounting separates the two failure modes for referenced recordings:
// a missing file is a delivery problem and is reported but never counted,
// a null file is a content-quality problem and feeds the null-audio
// metric.
type Accounting struct {
	// Null lists files present under the instance directory whose header
	// is not a recognized audio container.
	Null []string
	// Missing lists referenced files absent from disk.
	Missing []string
}

// Validate resolves each referenced filename against the instance
// directory and classifies it. The input list is taken as-is, duplicates
// included, so the caller's total count stays the length of the parsed
// reference list.
func Validate(instanceDir string, audioFiles []string) Accounting {
	var acct Accounting
	for _, name := range audioFiles {
		path := filepath.Join(instanceDir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			acct.Missing = append(acct.Missing, name)
			continue
		}
		if !isRecognized(path) {
			acct.Null = append(acct.Null, name)
		}
	}
	return acct
}

// isRecognized sniffs the file header and reports whether it is an audio
// container. Zero-length and unrecognized files both fail the sniff.
func isRecognized(path string) bool {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mime.String(), "audio/")
}
