package models

import (
	"path/filepath"
	"time"
)

// Instance is one recorded attempt by a student at a curriculum session,
// reconstructed from a log bundle on disk. GUID is the content fingerprint
// and the only deduplication key.
type Instance struct {
	GUID            string    `json:"guid"`
	Computer        string    `json:"computer,omitempty"`
	StudentID       int       `json:"student_id"`
	SessionID       int       `json:"session_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	NullAudioCount  int       `json:"null_audio_count"`
	TotalAudioCount int       `json:"total_audio_count"`
	SlidesFinished  int       `json:"slides_finished"`
	AudioFiles      []string  `json:"audio_files"`
}

// Session is a named curriculum activity with an expected slide count.
// Rows are owned by the seed loader; the pipeline only resolves them.
type Session struct {
	ID     int
	UnitID int
	Name   string
	Slides int
}

type Student struct {
	ID           int
	Name         string
	AssignedComp int
	TeacherID    int
}

type Computer struct {
	ID   int
	GUID string
}

type School struct {
	ID   int
	Name string
}

type Teacher struct {
	ID       int
	Name     string
	SchoolID int
}

type Unit struct {
	ID   int
	Name string
}

// Candidate is a filesystem-discovered instance that passed the scan
// filters but has not yet been validated and inserted. LogPaths holds
// every event log found at the instance path prefix; each log yields its
// own fingerprint and, when new, its own record.
type Candidate struct {
	Dir      string
	TxtPath  string
	LogPaths []string
}

// Base returns the instance directory's base name, which embeds the
// session name, student id and date.
func (c Candidate) Base() string {
	return filepath.Base(c.Dir)
}
