// Package report exports ingestion statistics as JSON, walking the
// school/teacher/student hierarchy the same way the reference data is
// organized.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/project-elva/data-processing/internal/models"
)

// Store is the slice of the store port the exporter reads from.
type Store interface {
	ListSessions() ([]models.Session, error)
	ListSchools() ([]models.School, error)
	ListTeachersBySchool(schoolID int) ([]models.Teacher, error)
	ListStudentsByTeacher(teacherID int) ([]models.Student, error)
	ListInstancesByStudent(studentID int) ([]models.Instance, error)
	GetComputerByID(id int) (*models.Computer, error)
}

// NullTolerancePct is the null-audio percentage above which an instance
// is flagged as a suspect recording.
const NullTolerancePct = 50

type InstanceStats struct {
	Session         string    `json:"session"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TotalAudioCount int       `json:"total_audio_count"`
	NullAudioCount  int       `json:"null_audio_count"`
	SlidesFinished  int       `json:"slides_finished"`
	SlidesExpected  int       `json:"slides_expected"`
	Suspect         bool      `json:"suspect,omitempty"`
}

type StudentStats struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Computer  string          `json:"computer,omitempty"`
	Instances []InstanceStats `json:"instances"`
}

type TeacherStats struct {
	Name     string         `json:"name"`
	Students []StudentStats `json:"students"`
}

type SchoolStats struct {
	Name     string         `json:"name"`
	Teachers []TeacherStats `json:"teachers"`
}

type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Schools     []SchoolStats `json:"schools"`
}

// Build assembles the full report from the store.
func Build(store Store) (*Report, error) {
	sessions, err := store.ListSessions()
	if err != nil {
		return nil, err
	}
	sessionsByID := make(map[int]models.Session, len(sessions))
	for _, sess := range sessions {
		sessionsByID[sess.ID] = sess
	}

	schools, err := store.ListSchools()
	if err != nil {
		return nil, err
	}

	rep := &Report{GeneratedAt: time.Now().UTC()}
	for _, school := range schools {
		schoolStats := SchoolStats{Name: school.Name}

		teachers, err := store.ListTeachersBySchool(school.ID)
		if err != nil {
			return nil, err
		}
		for _, teacher := range teachers {
			teacherStats := TeacherStats{Name: teacher.Name}

			students, err := store.ListStudentsByTeacher(teacher.ID)
			if err != nil {
				return nil, err
			}
			for _, student := range students {
				studentStats, err := buildStudent(store, student, sessionsByID)
				if err != nil {
					return nil, err
				}
				teacherStats.Students = append(teacherStats.Students, studentStats)
			}
			schoolStats.Teachers = append(schoolStats.Teachers, teacherStats)
		}
		rep.Schools = append(rep.Schools, schoolStats)
	}
	return rep, nil
}

func buildStudent(store Store, student models.Student, sessionsByID map[int]models.Session) (StudentStats, error) {
	stats := StudentStats{ID: student.ID, Name: student.Name}

	if student.AssignedComp != 0 {
		comp, err := store.GetComputerByID(student.AssignedComp)
		if err != nil {
			return stats, err
		}
		if comp != nil {
			stats.Computer = comp.GUID
		}
	}

	instances, err := store.ListInstancesByStudent(student.ID)
	if err != nil {
		return stats, err
	}
	for _, inst := range instances {
		sess := sessionsByID[inst.SessionID]
		stats.Instances = append(stats.Instances, InstanceStats{
			Session:         sess.Name,
			StartTime:       inst.StartTime,
			EndTime:         inst.EndTime,
			TotalAudioCount: inst.TotalAudioCount,
			NullAudioCount:  inst.NullAudioCount,
			SlidesFinished:  inst.SlidesFinished,
			SlidesExpected:  sess.Slides,
			Suspect:         isSuspect(inst),
		})
	}
	return stats, nil
}

func isSuspect(inst models.Instance) bool {
	if inst.TotalAudioCount == 0 {
		return false
	}
	return inst.NullAudioCount*100/inst.TotalAudioCount > NullTolerancePct
}

// WriteJSON writes the report, indented for human review.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
