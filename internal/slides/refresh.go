// Package slides recomputes each session's expected slide count from the
// curriculum CSV exports and writes back any count that drifted. It is
// the only writer that ever updates existing rows; the ingestion pipeline
// itself never mutates a record after insert.
package slides

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/project-elva/data-processing/internal/models"
)

// Store is the slice of the store port this utility needs.
type Store interface {
	ListSessions() ([]models.Session, error)
	UpdateSessionSlides(id, slides int) error
}

// sessionDirPattern matches curriculum session directories, whose names
// end in the attempt number 1-5.
const sessionDirPattern = `^[\w]+_[1-5]`

var sessionDirRE = regexp.MustCompile(sessionDirPattern)

// Refresh walks the curriculum tree, counts slides per session from
// <session>/phoenix/<session>.csv, and updates every stored session whose
// expected count no longer matches. It returns the number of updates.
func Refresh(store Store, dataDir string) (int, error) {
	counts, err := collectSlideCounts(dataDir)
	if err != nil {
		return 0, err
	}

	sessions, err := store.ListSessions()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, sess := range sessions {
		count, ok := counts[sess.Name]
		if !ok || sess.Slides == count {
			continue
		}
		if err := store.UpdateSessionSlides(sess.ID, count); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func collectSlideCounts(dataDir string) (map[string]int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read curriculum directory %s: %w", dataDir, err)
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !sessionDirRE.MatchString(name) {
			continue
		}

		phxDir := filepath.Join(dataDir, name, "phoenix")
		if info, err := os.Stat(phxDir); err != nil || !info.IsDir() {
			continue
		}

		csvFile := filepath.Join(phxDir, name+".csv")
		if info, err := os.Stat(csvFile); err != nil || !info.Mode().IsRegular() {
			// A phoenix export without its CSV counts as zero slides so
			// the stored value gets zeroed rather than left stale.
			counts[name] = 0
			continue
		}

		count, err := countSlides(csvFile)
		if err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, nil
}

// countSlides counts rows of the curriculum export carrying a slide name
// in the fifth column, skipping blanks and the header row.
func countSlides(csvFile string) (int, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", csvFile, err)
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Count(line, ",") < 4 {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), ",")
		if fields[4] != "" && fields[4] != "Slide" {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", csvFile, err)
	}
	return count, nil
}
