package ingestion

import (
	"fmt"
	"log"

	"github.com/project-elva/data-processing/internal/diag"
)

// RunSummary tallies the terminal state of every (instance, log) pair
// processed in one invocation.
type RunSummary struct {
	Candidates        int
	Inserted          int
	Duplicates        int
	SessionUnresolved int
	StudentUnresolved int
	MalformedLogs     int
}

func (r RunSummary) String() string {
	return fmt.Sprintf("%d candidates: %d inserted, %d duplicates, %d session unresolved, %d student unresolved, %d malformed logs",
		r.Candidates, r.Inserted, r.Duplicates, r.SessionUnresolved, r.StudentUnresolved, r.MalformedLogs)
}

// IngestionService orchestrates one batch run: scan once, then process
// candidates strictly in sequence. Per-candidate failures are contained
// by the processor; any error surfacing here is a store or I/O fault and
// aborts the run with whatever was already committed left in place.
type IngestionService struct {
	scanner   Scanner
	processor Processor
	sink      diag.Sink
}

func NewIngestionService(scanner Scanner, processor Processor, sink diag.Sink) *IngestionService {
	return &IngestionService{
		scanner:   scanner,
		processor: processor,
		sink:      sink,
	}
}

// Execute ingests everything under rootPath that is not already known.
func (s *IngestionService) Execute(rootPath string) (RunSummary, error) {
	var summary RunSummary

	log.Printf("Scanning %s for instance bundles...", rootPath)
	candidates, err := s.scanner.ScanForInstances(rootPath)
	if err != nil {
		return summary, err
	}
	summary.Candidates = len(candidates)
	log.Printf("Found %d candidates to process.", len(candidates))

	for _, candidate := range candidates {
		outcomes, err := s.processor.Process(candidate)
		for _, outcome := range outcomes {
			switch outcome {
			case OutcomeInserted:
				summary.Inserted++
			case OutcomeDuplicate:
				summary.Duplicates++
			case OutcomeSessionUnresolved:
				summary.SessionUnresolved++
			case OutcomeStudentUnresolved:
				summary.StudentUnresolved++
			case OutcomeMalformedLog:
				summary.MalformedLogs++
			}
		}
		if err != nil {
			return summary, fmt.Errorf("processing %s: %w", candidate.Dir, err)
		}
	}

	s.sink.Emit(diag.Info, "run finished: "+summary.String())
	return summary, nil
}
