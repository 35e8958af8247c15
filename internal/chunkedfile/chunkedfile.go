// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chunkedfile provides utilities for testing that errors in
// Python source are reported in the appropriate places.
//
// A chunked file consists of several chunks of input text separated by
// "---" lines. Each chunk is an input to the program under test, such
// as the parser, the resolver or the desugarer. Lines containing "###"
// are interpreted as expectations of failure: the following text is a
// Go string literal denoting a regular expression that should match
// the failure message reported for that line.
//
// Example:
//
//	nonlocal x ### "nonlocal declaration not allowed at module level"
//	---
//	def f():
//	    global x
//	    x = 1
//
// A client test feeds each chunk of text into the program under test,
// then calls chunk.GotError for each error that actually occurred. Any
// discrepancy between the actual and expected errors is reported using
// the client's reporter, which is typically a testing.T.
package chunkedfile // import "go.dietpy.dev/internal/chunkedfile"

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const debug = false

// A Chunk is a portion of a source file.
// It contains a set of expected errors.
type Chunk struct {
	// Source is the text of the chunk, padded with newlines so that
	// line numbers match the original file.
	Source string
	// Line is the line number of the first line of the chunk.
	Line int

	filename string
	report   Reporter
	wantErrs map[int]*regexp.Regexp
}

// Reporter is implemented by *testing.T.
type Reporter interface {
	Errorf(format string, args ...interface{})
}

// Read parses a chunked file and returns its chunks.
// It reports failures using the reporter.
//
// Error messages of the form "file.py:line:col: ..." are prefixed
// by a newline so that the Go source position added by (*testing.T).Errorf
// appears on a separate line so as not to confuse editors.
func Read(filename string, report Reporter) []Chunk {
	data, err := os.ReadFile(filename)
	if err != nil {
		report.Errorf("%s", err)
		return nil
	}
	return readBytes(filename, data, report)
}

// readBytes splits data into chunks. Carriage returns are dropped
// so that files checked out with Windows line endings behave alike.
func readBytes(filename string, data []byte, report Reporter) (chunks []Chunk) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	linenum := 1
	for i, chunk := range strings.Split(text, "\n---\n") {
		if debug {
			fmt.Printf("chunk %d at line %d: %s\n", i, linenum, chunk)
		}
		first := linenum
		// Pad with newlines so the line numbers match the original file.
		src := strings.Repeat("\n", linenum-1) + chunk

		wantErrs := make(map[int]*regexp.Regexp)

		// Parse comments of the form:
		// ### "expected error".
		for _, line := range strings.Split(chunk, "\n") {
			if rx, ok := expectation(filename, linenum, line, report); ok {
				wantErrs[linenum] = rx
				if debug {
					fmt.Printf("\t%d\t%s\n", linenum, rx)
				}
			}
			linenum++
		}
		linenum++ // the separator

		chunks = append(chunks, Chunk{
			Source:   src,
			Line:     first,
			filename: filename,
			report:   report,
			wantErrs: wantErrs,
		})
	}
	return chunks
}

func expectation(filename string, linenum int, line string, report Reporter) (*regexp.Regexp, bool) {
	hashes := strings.Index(line, "###")
	if hashes < 0 {
		return nil, false
	}
	rest := strings.TrimSpace(line[hashes+len("###"):])
	pattern, err := strconv.Unquote(rest)
	if err != nil {
		report.Errorf("\n%s:%d: not a quoted regexp: %s", filename, linenum, rest)
		return nil, false
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		report.Errorf("\n%s:%d: %v", filename, linenum, err)
		return nil, false
	}
	return rx, true
}

// WantsError reports whether the chunk expects at least one
// error that has not yet been reported.
func (chunk *Chunk) WantsError() bool { return len(chunk.wantErrs) > 0 }

// GotError should be called by the client to report an error at a particular line.
// GotError reports unexpected errors to the chunk's reporter.
func (chunk *Chunk) GotError(linenum int, msg string) {
	if rx, ok := chunk.wantErrs[linenum]; ok {
		delete(chunk.wantErrs, linenum)
		if !rx.MatchString(msg) {
			chunk.report.Errorf("\n%s:%d: error %q does not match pattern %q", chunk.filename, linenum, msg, rx)
		}
	} else {
		chunk.report.Errorf("\n%s:%d: unexpected error: %v", chunk.filename, linenum, msg)
	}
}

// Done should be called by the client to indicate that the chunk has no more errors.
// Done reports expected errors that did not occur to the chunk's reporter,
// in line order.
func (chunk *Chunk) Done() {
	lines := make([]int, 0, len(chunk.wantErrs))
	for linenum := range chunk.wantErrs {
		lines = append(lines, linenum)
	}
	sort.Ints(lines)
	for _, linenum := range lines {
		chunk.report.Errorf("\n%s:%d: expected error matching %q", chunk.filename, linenum, chunk.wantErrs[linenum])
	}
}
