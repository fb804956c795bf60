// Package parser extracts structured facts from the semi-structured text
// logs written by the lab recording software. The line patterns are kept
// as named constants and must not drift: fingerprinted data already in the
// store was extracted with exactly these shapes.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	audioPattern     = `.*\.au`
	computerPattern  = `Computer\sName:\s\d{2}-\d{5}`
	timestampPattern = `^\d{2}/\d{2}/\d{4}\s\d{2}:\d{2}:\d{2}`
	xmlLoadPattern   = `XML/ELVA_\w+-\w+_\w+\.xml`

	// TimestampLayout is the wall-clock format used by the recorder.
	TimestampLayout = "02/01/2006 15:04:05"

	// slidePrefixLen is the length of the "XML/" prefix stripped from
	// slide references.
	slidePrefixLen = 4
)

var (
	audioRE     = regexp.MustCompile(audioPattern)
	computerRE  = regexp.MustCompile(computerPattern)
	timestampRE = regexp.MustCompile(timestampPattern)
	xmlLoadRE   = regexp.MustCompile(xmlLoadPattern)
)

// ErrMalformedLog reports a log from which a required extraction yielded
// no data, such as a log without a single timestamp line.
var ErrMalformedLog = errors.New("malformed log")

// LineKind is the set of classes a log line belongs to. A single line can
// carry more than one class (a timestamped line may also reference an
// audio file), so kinds combine as flags; zero means the line carries no
// extractable fact.
type LineKind uint8

const (
	AudioRef LineKind = 1 << iota
	SlideLoad
	Timestamp
)

func (k LineKind) Has(flag LineKind) bool {
	return k&flag != 0
}

// Classify reports every fact class present on a line.
func Classify(line string) LineKind {
	var kind LineKind
	if audioRE.MatchString(line) {
		kind |= AudioRef
	}
	if xmlLoadRE.MatchString(line) {
		kind |= SlideLoad
	}
	if timestampRE.MatchString(line) {
		kind |= Timestamp
	}
	return kind
}

// LogFacts holds everything a single event log contributes to an instance
// record.
type LogFacts struct {
	// AudioFiles lists referenced recordings in file order, duplicates
	// included.
	AudioFiles []string
	// Slides lists distinct slide references in first-occurrence order.
	Slides    []string
	StartTime time.Time
	EndTime   time.Time
}

// ParseLog reads an event log line by line and extracts audio references,
// distinct slide loads and the first/last timestamps. A log without any
// timestamp line fails with ErrMalformedLog.
func ParseLog(logPath string) (*LogFacts, error) {
	file, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log %s: %w", logPath, err)
	}
	defer file.Close()

	facts := &LogFacts{}
	seenSlides := make(map[string]bool)
	var firstStamp, lastStamp string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		kind := Classify(line)

		if kind.Has(AudioRef) {
			facts.AudioFiles = append(facts.AudioFiles, extractAudioToken(line))
		}
		if kind.Has(SlideLoad) {
			slide := xmlLoadRE.FindString(line)[slidePrefixLen:]
			if !seenSlides[slide] {
				seenSlides[slide] = true
				facts.Slides = append(facts.Slides, slide)
			}
		}
		if kind.Has(Timestamp) {
			stamp := timestampRE.FindString(line)
			if firstStamp == "" {
				firstStamp = stamp
			}
			lastStamp = stamp
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log %s: %w", logPath, err)
	}

	if firstStamp == "" {
		return nil, fmt.Errorf("%w: no timestamp found in %s", ErrMalformedLog, logPath)
	}
	if facts.StartTime, err = time.Parse(TimestampLayout, firstStamp); err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q in %s", ErrMalformedLog, firstStamp, logPath)
	}
	if facts.EndTime, err = time.Parse(TimestampLayout, lastStamp); err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q in %s", ErrMalformedLog, lastStamp, logPath)
	}

	return facts, nil
}

// extractAudioToken returns the last whitespace-delimited field of the
// line prefix ending in ".au".
func extractAudioToken(line string) string {
	match := audioRE.FindString(line)
	fields := strings.Fields(match)
	return fields[len(fields)-1]
}

// GetComputer reads the computer-identity capture and returns the 8
// trailing characters of the first machine-name line, or the empty string
// when the capture holds none. A missing machine name is not an error.
func GetComputer(txtPath string) (string, error) {
	file, err := os.Open(txtPath)
	if err != nil {
		return "", fmt.Errorf("failed to open identity capture %s: %w", txtPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if match := computerRE.FindString(scanner.Text()); match != "" {
			return match[len(match)-8:], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read identity capture %s: %w", txtPath, err)
	}
	return "", nil
}
