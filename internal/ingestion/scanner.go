package ingestion

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/project-elva/data-processing/internal/diag"
	"github.com/project-elva/data-processing/internal/models"
)

const (
	// instanceDirPattern is the naming grammar for instance directories:
	// session name, attempt number, student id, recording date.
	instanceDirPattern = `[a-zA-Z]+_\d_\d{6}_\d{2}-\d{2}-\d{4}`

	// invalidRecordingMarker flags recordings the lab software wrote with
	// no usable student id; bundles under such paths are never processed.
	invalidRecordingMarker = "000000"
)

var instanceDirRE = regexp.MustCompile(instanceDirPattern)

// Scanner produces the candidate list for a run.
type Scanner interface {
	ScanForInstances(rootPath string) ([]models.Candidate, error)
}

// DirScanner walks a root log tree once, at startup, and applies the
// scan-time exclusions: sentinel-marked paths and bundles missing either
// companion file. Every decision is emitted to the diagnostics sink.
type DirScanner struct {
	sink diag.Sink
}

func NewDirScanner(sink diag.Sink) *DirScanner {
	return &DirScanner{sink: sink}
}

func (s *DirScanner) ScanForInstances(rootPath string) ([]models.Candidate, error) {
	var candidates []models.Candidate

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || !instanceDirRE.MatchString(d.Name()) {
			return nil
		}

		if strings.Contains(path, invalidRecordingMarker) {
			s.sink.Emit(diag.Warning, path+" carries the invalid-recording marker, excluded.")
			return fs.SkipDir
		}

		txtPath := path + ".txt"
		if _, statErr := os.Stat(txtPath); statErr != nil {
			s.sink.Emit(diag.Warning, txtPath+" does not exist.")
			return fs.SkipDir
		}
		if _, statErr := os.Stat(path + ".log"); statErr != nil {
			s.sink.Emit(diag.Warning, path+".log does not exist.")
			return fs.SkipDir
		}

		logPaths, err := findLogFiles(path)
		if err != nil {
			return err
		}

		s.sink.Emit(diag.Info, d.Name()+" was added to queue.")
		candidates = append(candidates, models.Candidate{
			Dir:      path,
			TxtPath:  txtPath,
			LogPaths: logPaths,
		})
		// Instance directories only contain recordings; nothing below
		// this level can be another candidate.
		return fs.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", rootPath, err)
	}

	return candidates, nil
}

// findLogFiles returns every event log sharing the instance path prefix,
// skipping editor lock files.
func findLogFiles(instancePath string) ([]string, error) {
	parent := filepath.Dir(instancePath)
	base := filepath.Base(instancePath)

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", parent, err)
	}

	var logPaths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, base) {
			continue
		}
		if strings.Contains(name, ".log") && !strings.Contains(name, ".lck") {
			logPaths = append(logPaths, filepath.Join(parent, name))
		}
	}
	return logPaths, nil
}
