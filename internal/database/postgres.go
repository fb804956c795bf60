package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/project-elva/data-processing/internal/models"
)

func ConnectDB(connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return dbpool, nil
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
	ctx    context.Context
}

func NewPostgresDBManager(ctx context.Context, pool *pgxpool.Pool) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool, ctx: ctx}
}

// CreateReferenceTables creates the reference-data tables owned by the
// seed loader. The pipeline only ever reads these.
func (m *PostgresDBManager) CreateReferenceTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS computers (
			id SERIAL PRIMARY KEY,
			guid VARCHAR(8) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS schools (
			id INTEGER PRIMARY KEY,
			name VARCHAR(1000) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS units (
			id SERIAL PRIMARY KEY,
			name VARCHAR(1000) NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS teachers (
			id INTEGER PRIMARY KEY,
			name VARCHAR(1000) NOT NULL,
			school_id INTEGER REFERENCES schools(id)
		);`,
		`CREATE TABLE IF NOT EXISTS students (
			id INTEGER PRIMARY KEY,
			name VARCHAR(1000) NOT NULL,
			assigned_comp INTEGER REFERENCES computers(id),
			teacher_id INTEGER REFERENCES teachers(id)
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id SERIAL PRIMARY KEY,
			unit_id INTEGER REFERENCES units(id),
			name VARCHAR(1000) NOT NULL,
			slides INTEGER NOT NULL
		);`,
	}

	for _, query := range queries {
		if _, err := m.dbpool.Exec(m.ctx, query); err != nil {
			return fmt.Errorf("error creating reference tables: %w", err)
		}
	}
	return nil
}

// CreateInstanceTable creates the fact table. The UNIQUE constraint on
// guid is what makes re-runs and concurrent inserts idempotent.
func (m *PostgresDBManager) CreateInstanceTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS instances (
		id SERIAL PRIMARY KEY,
		guid VARCHAR(1000) NOT NULL UNIQUE,
		computer VARCHAR(8),
		student_id INTEGER REFERENCES students(id),
		session_id INTEGER REFERENCES sessions(id),
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		null_audio_count INTEGER DEFAULT 0,
		total_audio_count INTEGER DEFAULT 0,
		slides_finished INTEGER DEFAULT 0,
		audio_files TEXT[] DEFAULT '{}'
	);`

	if _, err := m.dbpool.Exec(m.ctx, query); err != nil {
		return fmt.Errorf("error creating instances table: %w", err)
	}
	return nil
}

func (m *PostgresDBManager) HasInstanceWithGUID(guid string) (bool, error) {
	var exists bool
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT EXISTS(SELECT 1 FROM instances WHERE guid = $1)`, guid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking instance guid: %w", err)
	}
	return exists, nil
}

func (m *PostgresDBManager) FindSessionByName(name string) (*models.Session, error) {
	var sess models.Session
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, COALESCE(unit_id, 0), name, slides FROM sessions WHERE name = $1`, name).
		Scan(&sess.ID, &sess.UnitID, &sess.Name, &sess.Slides)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session %s: %w", name, err)
	}
	return &sess, nil
}

func (m *PostgresDBManager) FindStudentByID(id int) (*models.Student, error) {
	var stud models.Student
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, name, COALESCE(assigned_comp, 0), COALESCE(teacher_id, 0) FROM students WHERE id = $1`, id).
		Scan(&stud.ID, &stud.Name, &stud.AssignedComp, &stud.TeacherID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying student %d: %w", id, err)
	}
	return &stud, nil
}

func (m *PostgresDBManager) InsertInstance(inst *models.Instance) (bool, error) {
	var computer any
	if inst.Computer != "" {
		computer = inst.Computer
	}

	tag, err := m.dbpool.Exec(m.ctx, `
		INSERT INTO instances (
			guid, computer, student_id, session_id, start_time, end_time,
			null_audio_count, total_audio_count, slides_finished, audio_files
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (guid) DO NOTHING`,
		inst.GUID, computer, inst.StudentID, inst.SessionID,
		inst.StartTime, inst.EndTime,
		inst.NullAudioCount, inst.TotalAudioCount, inst.SlidesFinished,
		inst.AudioFiles)
	if err != nil {
		return false, fmt.Errorf("error inserting instance %s: %w", inst.GUID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (m *PostgresDBManager) FindComputerByGUID(guid string) (*models.Computer, error) {
	var comp models.Computer
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, guid FROM computers WHERE guid = $1`, guid).
		Scan(&comp.ID, &comp.GUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying computer %s: %w", guid, err)
	}
	return &comp, nil
}

func (m *PostgresDBManager) FindSchoolByName(name string) (*models.School, error) {
	var school models.School
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, name FROM schools WHERE name = $1`, name).
		Scan(&school.ID, &school.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying school %s: %w", name, err)
	}
	return &school, nil
}

func (m *PostgresDBManager) FindUnitByName(name string) (*models.Unit, error) {
	var unit models.Unit
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, name FROM units WHERE name = $1`, name).
		Scan(&unit.ID, &unit.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying unit %s: %w", name, err)
	}
	return &unit, nil
}

func (m *PostgresDBManager) InsertComputer(guid string) (int, error) {
	var id int
	err := m.dbpool.QueryRow(m.ctx,
		`INSERT INTO computers (guid) VALUES ($1) RETURNING id`, guid).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting computer %s: %w", guid, err)
	}
	return id, nil
}

func (m *PostgresDBManager) InsertSchool(id int, name string) error {
	_, err := m.dbpool.Exec(m.ctx,
		`INSERT INTO schools (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		return fmt.Errorf("error inserting school %s: %w", name, err)
	}
	return nil
}

func (m *PostgresDBManager) InsertUnit(name string) (int, error) {
	var id int
	err := m.dbpool.QueryRow(m.ctx,
		`INSERT INTO units (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting unit %s: %w", name, err)
	}
	return id, nil
}

func (m *PostgresDBManager) InsertTeacher(id int, name string, schoolID int) error {
	_, err := m.dbpool.Exec(m.ctx,
		`INSERT INTO teachers (id, name, school_id) VALUES ($1, $2, $3)`, id, name, schoolID)
	if err != nil {
		return fmt.Errorf("error inserting teacher %s: %w", name, err)
	}
	return nil
}

func (m *PostgresDBManager) InsertStudent(id int, name string, assignedComp, teacherID int) error {
	_, err := m.dbpool.Exec(m.ctx,
		`INSERT INTO students (id, name, assigned_comp, teacher_id) VALUES ($1, $2, $3, $4)`,
		id, name, assignedComp, teacherID)
	if err != nil {
		return fmt.Errorf("error inserting student %s: %w", name, err)
	}
	return nil
}

func (m *PostgresDBManager) InsertSession(unitID int, name string, slides int) (int, error) {
	var id int
	err := m.dbpool.QueryRow(m.ctx,
		`INSERT INTO sessions (unit_id, name, slides) VALUES ($1, $2, $3) RETURNING id`,
		unitID, name, slides).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting session %s: %w", name, err)
	}
	return id, nil
}

func (m *PostgresDBManager) ListSessions() ([]models.Session, error) {
	rows, err := m.dbpool.Query(m.ctx,
		`SELECT id, COALESCE(unit_id, 0), name, slides FROM sessions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.UnitID, &sess.Name, &sess.Slides); err != nil {
			return nil, fmt.Errorf("error scanning session row: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}
	return sessions, nil
}

func (m *PostgresDBManager) UpdateSessionSlides(id, slides int) error {
	_, err := m.dbpool.Exec(m.ctx,
		`UPDATE sessions SET slides = $1 WHERE id = $2`, slides, id)
	if err != nil {
		return fmt.Errorf("error updating slides for session %d: %w", id, err)
	}
	return nil
}

func (m *PostgresDBManager) ListSchools() ([]models.School, error) {
	rows, err := m.dbpool.Query(m.ctx, `SELECT id, name FROM schools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing schools: %w", err)
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var school models.School
		if err := rows.Scan(&school.ID, &school.Name); err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}
	return schools, nil
}

func (m *PostgresDBManager) ListTeachersBySchool(schoolID int) ([]models.Teacher, error) {
	rows, err := m.dbpool.Query(m.ctx,
		`SELECT id, name, school_id FROM teachers WHERE school_id = $1 ORDER BY name`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers for school %d: %w", schoolID, err)
	}
	defer rows.Close()

	var teachers []models.Teacher
	for rows.Next() {
		var teacher models.Teacher
		if err := rows.Scan(&teacher.ID, &teacher.Name, &teacher.SchoolID); err != nil {
			return nil, fmt.Errorf("error scanning teacher row: %w", err)
		}
		teachers = append(teachers, teacher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teacher rows: %w", err)
	}
	return teachers, nil
}

func (m *PostgresDBManager) ListStudentsByTeacher(teacherID int) ([]models.Student, error) {
	rows, err := m.dbpool.Query(m.ctx,
		`SELECT id, name, COALESCE(assigned_comp, 0), COALESCE(teacher_id, 0)
		 FROM students WHERE teacher_id = $1 ORDER BY name`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("error listing students for teacher %d: %w", teacherID, err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var stud models.Student
		if err := rows.Scan(&stud.ID, &stud.Name, &stud.AssignedComp, &stud.TeacherID); err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, stud)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

func (m *PostgresDBManager) ListInstancesByStudent(studentID int) ([]models.Instance, error) {
	rows, err := m.dbpool.Query(m.ctx, `
		SELECT guid, COALESCE(computer, ''), COALESCE(student_id, 0), COALESCE(session_id, 0),
		       start_time, end_time, null_audio_count, total_audio_count, slides_finished, audio_files
		FROM instances WHERE student_id = $1 ORDER BY start_time`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing instances for student %d: %w", studentID, err)
	}
	defer rows.Close()

	var instances []models.Instance
	for rows.Next() {
		var inst models.Instance
		if err := rows.Scan(&inst.GUID, &inst.Computer, &inst.StudentID, &inst.SessionID,
			&inst.StartTime, &inst.EndTime,
			&inst.NullAudioCount, &inst.TotalAudioCount, &inst.SlidesFinished,
			&inst.AudioFiles); err != nil {
			return nil, fmt.Errorf("error scanning instance row: %w", err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instance rows: %w", err)
	}
	return instances, nil
}

func (m *PostgresDBManager) GetComputerByID(id int) (*models.Computer, error) {
	var comp models.Computer
	err := m.dbpool.QueryRow(m.ctx,
		`SELECT id, guid FROM computers WHERE id = $1`, id).
		Scan(&comp.ID, &comp.GUID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying computer %d: %w", id, err)
	}
	return &comp, nil
}
