// Package normalize turns raw provider text into a parsed JSON value.
//
// The pipeline is fixed: trim, drop code fences, take the greedy outermost
// object or array, parse strictly, and on failure escape raw line breaks that
// sit inside string literals before parsing once more. Anything still invalid
// is reported as a malformed response with the candidate attached.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"resumalyzer/internal/errors"
)

// Shape is the top-level JSON shape a task expects.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

func (s Shape) delimiters() (byte, byte) {
	if s == ShapeArray {
		return '[', ']'
	}
	return '{', '}'
}

// fenceRe matches ``` with an optional language tag and the line break after it.
var fenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*[ \t]*\r?\n?")

// StripFences removes every code-fence delimiter, wherever it appears.
func StripFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}

// Candidate returns the JSON candidate substring of raw for the given shape.
// Without a delimiter pair the whole cleaned string is the candidate.
func Candidate(raw string, shape Shape) string {
	cleaned := strings.TrimSpace(StripFences(strings.TrimSpace(raw)))

	open, closing := shape.delimiters()
	start := strings.IndexByte(cleaned, open)
	end := strings.LastIndexByte(cleaned, closing)
	if start < 0 || end <= start {
		return cleaned
	}
	return cleaned[start : end+1]
}

// Normalize extracts and parses the JSON value in raw. Numbers are decoded as
// json.Number so the validator sees the exact text the model produced.
func Normalize(raw string, shape Shape) (any, error) {
	candidate := Candidate(raw, shape)
	if candidate == "" {
		return nil, errors.NewMalformedResponseError("response contained no JSON candidate", candidate, nil)
	}

	value, err := parseStrict(candidate)
	if err == nil {
		return value, nil
	}

	repaired := Repair(candidate)
	if repaired != candidate {
		value, repairErr := parseStrict(repaired)
		if repairErr == nil {
			return value, nil
		}
		err = repairErr
	}

	return nil, errors.NewMalformedResponseError(
		fmt.Sprintf("response is not valid JSON %s", shape), candidate, err)
}

// Repair escapes literal newline and carriage-return characters, but only
// inside quoted string literals. Existing escape sequences are left alone and
// structural whitespace outside strings is never touched.
func Repair(candidate string) string {
	var out strings.Builder
	out.Grow(len(candidate) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			out.WriteByte(c)
			continue
		}

		switch {
		case escaped:
			escaped = false
			out.WriteByte(c)
		case c == '\\':
			escaped = true
			out.WriteByte(c)
		case c == '"':
			inString = false
			out.WriteByte(c)
		case c == '\n':
			out.WriteString(`\n`)
		case c == '\r':
			out.WriteString(`\r`)
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

func parseStrict(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return value, nil
}
