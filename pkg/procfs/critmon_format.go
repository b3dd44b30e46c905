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

package procfs

import (
	"fmt"
	"strconv"

	"gvisor.dev/critmon/pkg/abi/linux"
)

// critmonLineLen bounds a single rendered field. The longest field is
// ",9223372036854775807.999999999".
const critmonLineLen = 64

// appendCPUField renders the leading CPU number of a record.
func appendCPUField(b []byte, cpu int) []byte {
	return strconv.AppendInt(b, int64(cpu), 10)
}

// appendDurationField renders a mark as ",sec.nsec" with nsec zero-padded to
// nine digits.
func appendDurationField(b []byte, ts linux.Timespec) []byte {
	return fmt.Appendf(b, ",%d.%09d", ts.Sec, ts.Nsec)
}

// appendEndField terminates a record.
func appendEndField(b []byte) []byte {
	return append(b, '\n')
}
