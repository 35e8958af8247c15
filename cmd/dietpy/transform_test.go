// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.dietpy.dev/desugar"
)

func TestTransformCmd_File(t *testing.T) {
	path := writeFile(t, "a.py", "x = a or b\n")
	output, err := execute(t, "", "transform", "--inject-import=false", path)
	require.NoError(t, err)
	assert.Equal(t, `_dp_tmp_1 = a
if __dp__.not_(_dp_tmp_1):
    _dp_tmp_1 = b
x = _dp_tmp_1
`, output)
}

func TestTransformCmd_Program(t *testing.T) {
	output, err := execute(t, "", "transform", "-c", "x = a + b")
	require.NoError(t, err)
	assert.Contains(t, output, `__dp__ = __import__("__dp__")`)
	assert.Contains(t, output, "x = __dp__.add(a, b)")
}

func TestTransformCmd_Stdin(t *testing.T) {
	output, err := execute(t, "y = a[0]\n", "transform")
	require.NoError(t, err)
	assert.Contains(t, output, "y = __dp__.getitem(a, 0)")
}

func TestTransformCmd_OutputDir(t *testing.T) {
	a := writeFile(t, "a.py", "x = a + b\n")
	b := writeFile(t, "b.py", "y = -c\n")
	dir := filepath.Join(t.TempDir(), "out")

	output, err := execute(t, "", "transform", "-j", "2", "-o", dir, a, b)
	require.NoError(t, err)
	assert.Empty(t, output)

	data, err := os.ReadFile(filepath.Join(dir, "a.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "x = __dp__.add(a, b)")
	data, err = os.ReadFile(filepath.Join(dir, "b.py"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "y = __dp__.neg(c)")
}

func TestTransformCmd_MultipleToStdout(t *testing.T) {
	a := writeFile(t, "a.py", "x = 1\n")
	b := writeFile(t, "b.py", "y = 2\n")
	output, err := execute(t, "", "transform", "--inject-import=false", a, b)
	require.NoError(t, err)
	assert.Equal(t, "# "+a+"\nx = 1\n# "+b+"\ny = 2\n", output)
}

func TestTransformCmd_Diff(t *testing.T) {
	path := writeFile(t, "a.py", "x = a + b\n")
	output, err := execute(t, "", "transform", "--diff", "--inject-import=false", path)
	require.NoError(t, err)
	assert.Contains(t, output, "--- "+path)
	assert.Contains(t, output, "+++ "+path+" (desugared)")
	assert.Contains(t, output, "-x = a + b")
	assert.Contains(t, output, "+x = __dp__.add(a, b)")
}

func TestTransformCmd_Disabled(t *testing.T) {
	src := "# diet-python: disabled\nx = a or b  # kept\n"
	path := writeFile(t, "a.py", src)
	output, err := execute(t, "", "transform", path)
	require.NoError(t, err)
	assert.Equal(t, src, output)
}

func TestTransformCmd_Errors(t *testing.T) {
	path := writeFile(t, "bad.py", "x = (\n")
	_, err := execute(t, "", "transform", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	var syntaxErr *desugar.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	_, err = execute(t, "", "transform", "-c", "*a = b")
	var unsupported *desugar.UnsupportedError
	require.Error(t, err)
	assert.True(t, errors.As(err, &unsupported))

	_, err = execute(t, "", "transform", "-c", "x = 1", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	_, err = execute(t, "", "transform", "--import-star=bogus", "-c", "x = 1")
	require.Error(t, err)

	_, err = execute(t, "", "transform", filepath.Join(t.TempDir(), "missing.py"))
	require.Error(t, err)
}

func TestTransformCmd_ImportStar(t *testing.T) {
	_, err := execute(t, "", "transform", "--import-star=error", "-c", "from m import *")
	var unsupported *desugar.UnsupportedError
	require.Error(t, err)
	assert.True(t, errors.As(err, &unsupported))

	output, err := execute(t, "", "transform", "--import-star=strip", "--inject-import=false", "-c", "from m import *\nx = 1")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", output)
}

func TestTransformAll_Order(t *testing.T) {
	var units []unit
	for _, src := range []string{"a = 1\n", "b = 2\n", "c = 3\n", "d = 4\n"} {
		units = append(units, unit{name: src[:1] + ".py", src: []byte(src)})
	}
	outputs, err := transformAll(context.Background(), units, &desugar.Options{}, 2)
	require.NoError(t, err)
	require.Len(t, outputs, len(units))
	for i, out := range outputs {
		assert.Equal(t, units[i].name, out.name)
		assert.Equal(t, string(units[i].src), out.text)
	}
}

func TestTransformAll_StopsOnError(t *testing.T) {
	units := []unit{
		{name: "good.py", src: []byte("x = 1\n")},
		{name: "bad.py", src: []byte("def f(x):\n    global x\n")},
	}
	_, err := transformAll(context.Background(), units, &desugar.Options{}, 0)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "bad.py: "))
}

func TestReadUnits(t *testing.T) {
	units, err := readUnits(strings.NewReader("x = 1\n"), nil, "")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "<stdin>", units[0].name)
	assert.False(t, units[0].file)

	units, err = readUnits(nil, nil, "y = 2")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "<cmdline>", units[0].name)

	path := writeFile(t, "m.py", "z = 3\n")
	units, err = readUnits(nil, []string{path}, "")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.True(t, units[0].file)
	assert.Equal(t, "z = 3\n", string(units[0].src))
}

func TestUnifiedDiff_Unchanged(t *testing.T) {
	diff, err := unifiedDiff(output{unit: unit{name: "a.py", src: []byte("x = 1\n")}, text: "x = 1\n"})
	require.NoError(t, err)
	assert.Empty(t, diff)
}
