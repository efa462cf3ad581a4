// Package notes extracts human-authored release notes from the output of
// showing an annotated trigger tag.
package notes

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/grokify/releaseconductor/pkg/model"
)

// MinBytes is the minimum accepted length of the extracted notes body.
const MinBytes = 100

// RequiredMarker must appear, case-insensitively, within the first two lines
// of the notes body.
const RequiredMarker = "## Quick Start"

// commitHeader terminates the notes body: everything from the first line
// matching it onward belongs to the commit the tag points at, not the notes.
var commitHeader = regexp.MustCompile(`^commit [0-9a-f]+`)

// parser states for the line scan over the tag-show text.
type state int

const (
	stateSeeking state = iota // looking for the tag reference line
	statePrefix               // skipping the tagger/date header
	stateBody                 // collecting note lines
)

// Extract runs a line-oriented state machine over the raw tag-show text and
// returns the notes body verbatim. The scan seeks the reference line for
// exactly sourceTag, skips the metadata header up to the first blank line,
// then collects lines until a commit header.
func Extract(tagShow, sourceTag string) (string, error) {
	marker := "tag " + sourceTag
	st := stateSeeking

	var body []string

	scanner := bufio.NewScanner(strings.NewReader(tagShow))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		switch st {
		case stateSeeking:
			if strings.Contains(line, marker) {
				st = statePrefix
			}
		case statePrefix:
			if strings.TrimSpace(line) == "" {
				st = stateBody
			}
		case stateBody:
			if commitHeader.MatchString(line) {
				return finish(body)
			}
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to scan tag output: %w", err)
	}

	if st == stateSeeking {
		return "", fmt.Errorf("%w: no annotated tag %s in output", model.ErrMissingAnnotation, sourceTag)
	}

	return finish(body)
}

func finish(body []string) (string, error) {
	text := strings.Join(body, "\n")

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: tag annotation body is empty", model.ErrMissingAnnotation)
	}
	if len(text) < MinBytes {
		return "", fmt.Errorf("%w: notes are %d bytes, need at least %d", model.ErrInvalidReleaseNotes, len(text), MinBytes)
	}
	if !markerInHead(body) {
		return "", fmt.Errorf("%w: first two lines must contain %q", model.ErrInvalidReleaseNotes, RequiredMarker)
	}

	return text, nil
}

// markerInHead checks the first two collected lines for the required marker,
// case-insensitively.
func markerInHead(body []string) bool {
	want := strings.ToLower(RequiredMarker)
	for i, line := range body {
		if i >= 2 {
			break
		}
		if strings.Contains(strings.ToLower(line), want) {
			return true
		}
	}
	return false
}
