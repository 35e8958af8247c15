// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package desugar

import "go.dietpy.dev/syntax"

// rewriteTry replaces typed exception handlers by a single bare handler
// that tests the current exception explicitly:
//
//	try:
//	    body
//	except:
//	    if __dp__.exception_matches(__dp__.current_exception(), E):
//	        e = __dp__.current_exception()
//	        try:
//	            handler
//	        finally:
//	            e = None
//	            del e
//	    else:
//	        raise
//
// A bare handler, which must come last, replaces the final raise.
// The else and finally clauses are kept.
func (ctx *Context) rewriteTry(s *syntax.TryStmt) Rewrite {
	typed := false
	for _, h := range s.Handlers {
		if h.Type != nil {
			typed = true
		}
	}
	if !typed {
		return Rewrite{}
	}

	var chain []syntax.Stmt
	last := s.Handlers[len(s.Handlers)-1]
	if last.Type == nil {
		chain = last.Body
	} else {
		chain = []syntax.Stmt{&syntax.RaiseStmt{Raise: last.Except}}
	}
	for i := len(s.Handlers) - 1; i >= 0; i-- {
		h := s.Handlers[i]
		if h.Type == nil {
			if i != len(s.Handlers)-1 {
				unsupported(h, "bare except clause before the last handler")
			}
			continue
		}
		body := h.Body
		if h.Name != nil {
			name := h.Name.Name
			body = []syntax.Stmt{
				assign(name, dpCall("current_exception")),
				&syntax.TryStmt{
					Try:  h.Except,
					Body: body,
					Finally: []syntax.Stmt{
						assign(name, none()),
						del(name),
					},
				},
			}
		}
		chain = []syntax.Stmt{&syntax.IfStmt{
			If:    h.Except,
			Cond:  dpCall("exception_matches", dpCall("current_exception"), h.Type),
			True:  body,
			False: chain,
		}}
	}

	return visit(&syntax.TryStmt{
		Try:      s.Try,
		Body:     s.Body,
		Handlers: []*syntax.ExceptClause{{Except: s.Handlers[0].Except, Body: chain}},
		Else:     s.Else,
		Finally:  s.Finally,
	})
}
