// log/stack.go
// Copyright(c) 2022-2026 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const maxStackFrames = 16

// StackFrame is one entry of the "callstack" attribute added to log records.
type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Callstack returns the stack of the function calling the logging method
// that called it, reusing fr's storage. Package paths within this module
// are trimmed, and the stack ends at main.main or the test runner.
func Callstack(fr []StackFrame) []StackFrame {
	var pcs [maxStackFrames]uintptr
	n := runtime.Callers(3, pcs[:])

	fr = fr[:0]
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function == "" {
			break
		}

		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: trimFunction(frame.Function),
		})

		if !more || frame.Function == "main.main" || strings.HasPrefix(frame.Function, "testing.") {
			break
		}
	}
	return fr
}

func trimFunction(fn string) string {
	fn = strings.TrimPrefix(fn, "github.com/mmp/maxspeed/")
	return strings.TrimPrefix(fn, "main.")
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}
