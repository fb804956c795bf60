package database

import (
	"github.com/project-elva/data-processing/internal/models"
)

// DBManager is the store port for the ingestion pipeline and its
// companion loaders. Lookup methods return a nil record (not an error)
// when no row matches; errors are reserved for store-level failures,
// which abort the run.
type DBManager interface {
	CreateReferenceTables() error
	CreateInstanceTable() error

	HasInstanceWithGUID(guid string) (bool, error)
	FindSessionByName(name string) (*models.Session, error)
	FindStudentByID(id int) (*models.Student, error)
	// InsertInstance stages and commits one record. The insert is keyed
	// on the fingerprint's uniqueness constraint, so a concurrent or
	// re-delivered duplicate reports inserted=false instead of failing.
	InsertInstance(inst *models.Instance) (inserted bool, err error)

	FindComputerByGUID(guid string) (*models.Computer, error)
	FindSchoolByName(name string) (*models.School, error)
	FindUnitByName(name string) (*models.Unit, error)
	InsertComputer(guid string) (int, error)
	InsertSchool(id int, name string) error
	InsertUnit(name string) (int, error)
	InsertTeacher(id int, name string, schoolID int) error
	InsertStudent(id int, name string, assignedComp, teacherID int) error
	InsertSession(unitID int, name string, slides int) (int, error)

	ListSessions() ([]models.Session, error)
	UpdateSessionSlides(id, slides int) error

	ListSchools() ([]models.School, error)
	ListTeachersBySchool(schoolID int) ([]models.Teacher, error)
	ListStudentsByTeacher(teacherID int) ([]models.Student, error)
	ListInstancesByStudent(studentID int) ([]models.Instance, error)
	GetComputerByID(id int) (*models.Computer, error)
}
