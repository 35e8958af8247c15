// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"go.dietpy.dev/desugar"
	"go.dietpy.dev/syntax"
)

// A fixture file holds rewrite cases. Each case transforms Input and
// checks for substrings of the printed output. Every case but those
// with explicit scopes must also transform its output to itself.
type fixture struct {
	Case []struct {
		Name            string
		Input           string
		LowerAttributes bool `toml:"lower_attributes"`
		ExplicitScopes  bool `toml:"explicit_scopes"`
		Contains        []string
		Absent          []string
	}
}

func TestFixtures(t *testing.T) {
	files, err := filepath.Glob("testdata/*.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no fixture files")
	}
	for _, file := range files {
		var fx fixture
		if _, err := toml.DecodeFile(file, &fx); err != nil {
			t.Errorf("%s: %v", file, err)
			continue
		}
		for _, c := range fx.Case {
			opts := &desugar.Options{
				LowerAttributes: c.LowerAttributes,
				ExplicitScopes:  c.ExplicitScopes,
				CheckIdempotent: !c.ExplicitScopes,
			}
			res, err := desugar.Source(file, c.Input, opts)
			if err != nil {
				t.Errorf("%s: %s: %v", file, c.Name, err)
				continue
			}
			got := syntax.Format(res.File)
			for _, want := range c.Contains {
				if !strings.Contains(got, want) {
					t.Errorf("%s: %s: output lacks %q:\n%s", file, c.Name, want, got)
				}
			}
			for _, bad := range c.Absent {
				if strings.Contains(got, bad) {
					t.Errorf("%s: %s: output contains %q:\n%s", file, c.Name, bad, got)
				}
			}
		}
	}
}
