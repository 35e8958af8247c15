// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"go.dietpy.dev/desugar"
)

const nested = `
class C(B):
    def m(self, xs):
        total = 0
        def add(y):
            nonlocal total
            total += y
        with lock:
            try:
                for x in xs:
                    add(x or 0)
            except E as e:
                log(e)
        return [v for v in xs if v and total]
`

// debugRecords transforms src and returns the debug records it logs.
func debugRecords(t *testing.T, src string) []map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := desugar.Source("test.py", src, &desugar.Options{Logger: logger}); err != nil {
		t.Fatal(err)
	}
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decoding %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestPassCount(t *testing.T) {
	for _, test := range []struct {
		src  string
		want float64
	}{
		{"x = 1\n", 1},
		{"x = a or b\n", 2},
		{dedent(nested), 2},
	} {
		var passes float64 = -1
		for _, rec := range debugRecords(t, test.src) {
			if rec["msg"] == "done" {
				passes = rec["passes"].(float64)
			}
		}
		if passes != test.want {
			t.Errorf("%q: rewriting took %v passes, want %v", test.src, passes, test.want)
		}
	}
}

func TestRewriteRecordsNodeIndex(t *testing.T) {
	seen := make(map[float64]bool)
	for _, rec := range debugRecords(t, dedent(nested)) {
		if rec["msg"] != "rewrite" {
			continue
		}
		node, ok := rec["node"].(float64)
		if !ok || node < 1 {
			t.Fatalf("rewrite record without node index: %v", rec)
		}
		seen[node] = true
	}
	if len(seen) < 2 {
		t.Errorf("rewrites of distinct statements share node indices: %v", seen)
	}
}
