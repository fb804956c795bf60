package ingestion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/project-elva/data-processing/internal/audio"
	"github.com/project-elva/data-processing/internal/database"
	"github.com/project-elva/data-processing/internal/diag"
	"github.com/project-elva/data-processing/internal/models"
	"github.com/project-elva/data-processing/internal/parser"
	"github.com/project-elva/data-processing/pkg/checksum"
)

// Outcome is the terminal state of one (instance, log) pair within a run.
// There is no retry: whatever happens to a pair, the run moves on.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeDuplicate
	OutcomeSessionUnresolved
	OutcomeStudentUnresolved
	OutcomeMalformedLog
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeSessionUnresolved:
		return "session unresolved"
	case OutcomeStudentUnresolved:
		return "student unresolved"
	case OutcomeMalformedLog:
		return "malformed log"
	}
	return "unknown"
}

// Processor turns one candidate into zero or more inserted records.
type Processor interface {
	Process(candidate models.Candidate) ([]Outcome, error)
}

// InstanceProcessor runs the per-candidate pipeline: fingerprint,
// duplicate gate, log parse, audio accounting, reference resolution,
// insert. Every failure short of a store or I/O fault is contained to the
// candidate and reported through the sink; returned errors abort the run.
type InstanceProcessor struct {
	dbManager database.DBManager
	sink      diag.Sink
}

func NewInstanceProcessor(dbManager database.DBManager, sink diag.Sink) *InstanceProcessor {
	return &InstanceProcessor{dbManager: dbManager, sink: sink}
}

func (p *InstanceProcessor) Process(candidate models.Candidate) ([]Outcome, error) {
	base := candidate.Base()
	sessionName, studentID, err := splitInstanceName(base)
	if err != nil {
		// The scan grammar makes this unreachable for discovered
		// candidates, but the processor does not rely on its caller.
		p.sink.Emit(diag.Warning, "could not split instance name - "+base)
		return nil, nil
	}

	var outcomes []Outcome
	for _, logPath := range candidate.LogPaths {
		outcome, err := p.processLog(candidate, base, sessionName, studentID, logPath)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (p *InstanceProcessor) processLog(candidate models.Candidate, base, sessionName string, studentID int, logPath string) (Outcome, error) {
	fingerprint, err := checksum.HashInstance(candidate.Dir, logPath, candidate.TxtPath)
	if err != nil {
		return 0, err
	}

	exists, err := p.dbManager.HasInstanceWithGUID(fingerprint)
	if err != nil {
		return 0, err
	}
	if exists {
		p.sink.Emit(diag.Warning, "attempted to add instance with same GUID - "+base)
		return OutcomeDuplicate, nil
	}

	facts, err := parser.ParseLog(logPath)
	if err != nil {
		if errors.Is(err, parser.ErrMalformedLog) {
			p.sink.Emit(diag.Warning, err.Error())
			return OutcomeMalformedLog, nil
		}
		return 0, err
	}

	computer, err := parser.GetComputer(candidate.TxtPath)
	if err != nil {
		return 0, err
	}

	acct := audio.Validate(candidate.Dir, facts.AudioFiles)
	for _, name := range acct.Missing {
		p.sink.Emit(diag.Warning, fmt.Sprintf("detected missing/deleted audio file %s - %s", name, base))
	}

	sess, err := p.dbManager.FindSessionByName(sessionName)
	if err != nil {
		return 0, err
	}
	if sess == nil {
		p.sink.Emit(diag.Warning, "session name was unable to be identified - "+base)
		return OutcomeSessionUnresolved, nil
	}

	stud, err := p.dbManager.FindStudentByID(studentID)
	if err != nil {
		return 0, err
	}
	if stud == nil {
		p.sink.Emit(diag.Warning, fmt.Sprintf("student ID %d does not exist in table.", studentID))
		return OutcomeStudentUnresolved, nil
	}

	inserted, err := p.dbManager.InsertInstance(&models.Instance{
		GUID:            fingerprint,
		Computer:        computer,
		StudentID:       stud.ID,
		SessionID:       sess.ID,
		StartTime:       facts.StartTime,
		EndTime:         facts.EndTime,
		NullAudioCount:  len(acct.Null),
		TotalAudioCount: len(facts.AudioFiles),
		SlidesFinished:  len(facts.Slides),
		AudioFiles:      facts.AudioFiles,
	})
	if err != nil {
		return 0, err
	}
	if !inserted {
		// Lost a race with another writer; same terminal state as the
		// lookup-time duplicate.
		p.sink.Emit(diag.Warning, "attempted to add instance with same GUID - "+base)
		return OutcomeDuplicate, nil
	}

	p.sink.Emit(diag.Info, "successfully added instance "+base)
	return OutcomeInserted, nil
}

// splitInstanceName extracts the session name (first two underscore
// tokens) and the student id (third token) from an instance directory
// base name.
func splitInstanceName(base string) (sessionName string, studentID int, err error) {
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return "", 0, fmt.Errorf("instance name %q has too few tokens", base)
	}
	studentID, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("instance name %q has a non-numeric student id: %w", base, err)
	}
	return parts[0] + "_" + parts[1], studentID, nil
}
