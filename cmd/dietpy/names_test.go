// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"go.dietpy.dev/desugar"
)

func TestNamesStruct(t *testing.T) {
	units := []unit{{name: "m.py", src: []byte("def f():\n    return lambda: 1\n")}}
	outputs, err := transformAll(context.Background(), units, &desugar.Options{}, 1)
	require.NoError(t, err)

	msg, err := namesStruct(outputs)
	require.NoError(t, err)
	names := msg.AsMap()["m.py"].(map[string]interface{})
	require.Len(t, names, 2)
	assert.Equal(t, map[string]interface{}{"name": "f", "qualname": "f"}, names["_dp_fn_f_2"])
	assert.Equal(t,
		map[string]interface{}{"name": "<lambda>", "qualname": "f.<locals>.<lambda>"},
		names["_dp_lambda_1"])
}

func TestTransformCmd_Names(t *testing.T) {
	path := writeFile(t, "m.py", "def g():\n    pass\n")
	namesPath := filepath.Join(t.TempDir(), "names.json")
	_, err := execute(t, "", "transform", "--names", namesPath, path)
	require.NoError(t, err)

	data, err := os.ReadFile(namesPath)
	require.NoError(t, err)
	var msg structpb.Struct
	require.NoError(t, protojson.Unmarshal(data, &msg))
	names := msg.AsMap()[path].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"name": "g", "qualname": "g"}, names["_dp_fn_g_1"])
}
