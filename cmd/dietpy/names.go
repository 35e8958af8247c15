// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// namesStruct returns the generated function names of each output as
// a struct of the form
//
//	{"file.py": {"_dp_fn_f_1": {"name": "f", "qualname": "f"}}}
func namesStruct(outputs []output) (*structpb.Struct, error) {
	files := make(map[string]interface{}, len(outputs))
	for _, out := range outputs {
		names := make(map[string]interface{}, len(out.res.Names))
		for generated, fn := range out.res.Names {
			names[generated] = map[string]interface{}{
				"name":     fn.Name,
				"qualname": fn.Qualname,
			}
		}
		files[out.name] = names
	}
	return structpb.NewStruct(files)
}

// writeNames writes the function names of outputs as JSON to path,
// or to stdout if path is "-".
func writeNames(stdout io.Writer, path string, outputs []output) error {
	msg, err := namesStruct(outputs)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "\t"}.Marshal(msg)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
