// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// GoogleEmitter is a wrapper that emits logs in a format compatible with
// package github.com/golang/glog.
type GoogleEmitter struct {
	*Writer
}

// glogTimeLayout renders "mmdd hh:mm:ss.uuuuuu".
const glogTimeLayout = "0102 15:04:05.000000"

// pidColumn is the thread id column of the header. glog pads it to 7
// characters; see glog.loggingT.formatHeader.
var pidColumn = padLeft(strconv.AppendInt(nil, int64(os.Getpid()), 10), 7)

// padLeft right-aligns digits in a column of the given width.
func padLeft(digits []byte, width int) []byte {
	if len(digits) >= width {
		return digits
	}
	col := make([]byte, width-len(digits), width)
	for i := range col {
		col[i] = ' '
	}
	return append(col, digits...)
}

func levelLetter(level Level) byte {
	switch level {
	case Debug:
		return 'D'
	case Info:
		return 'I'
	default:
		return 'W'
	}
}

// Emit emits the message, google-style:
//
//	Lmmdd hh:mm:ss.uuuuuu threadid file:line] msg...
//
// L is the level letter (D, I or W), threadid is the space-padded pid and
// file is the base name of the calling source file.
func (g GoogleEmitter) Emit(depth int, level Level, timestamp time.Time, format string, args ...any) {
	var local [256]byte
	b := append(local[:0], levelLetter(level))
	b = timestamp.AppendFormat(b, glogTimeLayout)
	b = append(b, ' ')
	b = append(b, pidColumn...)
	b = append(b, ' ')

	if _, file, line, ok := runtime.Caller(depth + 1); ok {
		b = fmt.Appendf(b, "%s:%d", baseName(file), line)
	} else {
		b = append(b, "???:0"...)
	}
	b = append(b, "] "...)
	b = append(b, format...)
	b = append(b, '\n')

	g.Writer.Emit(depth+1, level, timestamp, string(b), args...)
}

func baseName(file string) string {
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			return file[i+1:]
		}
	}
	return file
}
