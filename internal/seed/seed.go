// Package seed loads the reference data the pipeline resolves against:
// computers, schools, units, teachers, students and curriculum sessions,
// read from curated CSV files. Rows referencing an entity that has not
// been loaded fail the run; reference data is small and hand-maintained,
// so a broken cross-reference should stop the load, not be skipped.
package seed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/project-elva/data-processing/internal/models"
)

// Store is the slice of the store port the loader needs.
type Store interface {
	FindComputerByGUID(guid string) (*models.Computer, error)
	FindSchoolByName(name string) (*models.School, error)
	FindUnitByName(name string) (*models.Unit, error)
	InsertComputer(guid string) (int, error)
	InsertSchool(id int, name string) error
	InsertUnit(name string) (int, error)
	InsertTeacher(id int, name string, schoolID int) error
	InsertStudent(id int, name string, assignedComp, teacherID int) error
	InsertSession(unitID int, name string, slides int) (int, error)
}

type Loader struct {
	store Store
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// LoadAll loads every reference file from dataDir in dependency order.
func (l *Loader) LoadAll(dataDir string) error {
	steps := []struct {
		file string
		load func([][]string) error
	}{
		{"computers.csv", l.loadComputers},
		{"schools.csv", l.loadSchools},
		{"units.csv", l.loadUnits},
		{"teachers.csv", l.loadTeachers},
		{"students.csv", l.loadStudents},
		{"sessions.csv", l.loadSessions},
	}

	for _, step := range steps {
		records, err := readCSV(filepath.Join(dataDir, step.file))
		if err != nil {
			return err
		}
		if err := step.load(records); err != nil {
			return fmt.Errorf("loading %s: %w", step.file, err)
		}
	}
	return nil
}

// readCSV reads a reference file, dropping lines whose first field starts
// with the '#' comment marker.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records [][]string
	for _, record := range all {
		if len(record) == 0 || strings.HasPrefix(record[0], "#") {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// computers.csv: guid
func (l *Loader) loadComputers(records [][]string) error {
	for _, record := range records {
		if _, err := l.store.InsertComputer(record[0]); err != nil {
			return err
		}
	}
	return nil
}

// schools.csv: id, name
func (l *Loader) loadSchools(records [][]string) error {
	for _, record := range records {
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return fmt.Errorf("bad school id %q: %w", record[0], err)
		}
		if err := l.store.InsertSchool(id, record[1]); err != nil {
			return err
		}
	}
	return nil
}

// units.csv: name
func (l *Loader) loadUnits(records [][]string) error {
	for _, record := range records {
		if _, err := l.store.InsertUnit(record[0]); err != nil {
			return err
		}
	}
	return nil
}

// teachers.csv: id, name, school name
func (l *Loader) loadTeachers(records [][]string) error {
	for _, record := range records {
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return fmt.Errorf("bad teacher id %q: %w", record[0], err)
		}
		school, err := l.store.FindSchoolByName(record[2])
		if err != nil {
			return err
		}
		if school == nil {
			return fmt.Errorf("teacher %s references unknown school %q", record[1], record[2])
		}
		if err := l.store.InsertTeacher(id, record[1], school.ID); err != nil {
			return err
		}
	}
	return nil
}

// students.csv: id, name, computer guid, teacher id
func (l *Loader) loadStudents(records [][]string) error {
	for _, record := range records {
		id, err := strconv.Atoi(record[0])
		if err != nil {
			return fmt.Errorf("bad student id %q: %w", record[0], err)
		}
		teacherID, err := strconv.Atoi(record[3])
		if err != nil {
			return fmt.Errorf("bad teacher id %q for student %s: %w", record[3], record[1], err)
		}
		computer, err := l.store.FindComputerByGUID(record[2])
		if err != nil {
			return err
		}
		if computer == nil {
			return fmt.Errorf("student %s references unknown computer %q", record[1], record[2])
		}
		if err := l.store.InsertStudent(id, record[1], computer.ID, teacherID); err != nil {
			return err
		}
	}
	return nil
}

// sessions.csv: unit name, session name, expected slide count
func (l *Loader) loadSessions(records [][]string) error {
	for _, record := range records {
		slides, err := strconv.Atoi(record[2])
		if err != nil {
			return fmt.Errorf("bad slide count %q for session %s: %w", record[2], record[1], err)
		}
		unit, err := l.store.FindUnitByName(record[0])
		if err != nil {
			return err
		}
		if unit == nil {
			return fmt.Errorf("session %s references unknown unit %q", record[1], record[0])
		}
		if _, err := l.store.InsertSession(unit.ID, record[1], slides); err != nil {
			return err
		}
	}
	return nil
}
