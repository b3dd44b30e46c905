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

package linuxerr

import (
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
	"gvisor.dev/critmon/pkg/errors"
)

func TestEquals(t *testing.T) {
	for _, tc := range []struct {
		name string
		e    *errors.Error
		err  error
		want bool
	}{
		{name: "same pointer", e: EACCES, err: EACCES, want: true},
		{name: "matching errno", e: EACCES, err: unix.EACCES, want: true},
		{name: "different errno", e: EACCES, err: unix.ENOMEM, want: false},
		{name: "different linuxerr", e: EACCES, err: ENOMEM, want: false},
		{name: "nil against nil", e: nil, err: nil, want: true},
		{name: "nil against error", e: nil, err: ENOSYS, want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equals(tc.e, tc.err); got != tc.want {
				t.Errorf("Equals(%v, %v) = %t, want %t", tc.e, tc.err, got, tc.want)
			}
		})
	}
}

func TestToUnix(t *testing.T) {
	if got := ToUnix(ENOSYS); got != unix.ENOSYS {
		t.Errorf("ToUnix(ENOSYS) = %v, want %v", got, unix.ENOSYS)
	}
	if got := ToUnix(nil); got != 0 {
		t.Errorf("ToUnix(nil) = %v, want 0", got)
	}
}

func TestErrorFromUnix(t *testing.T) {
	for errno, want := range errnoToError {
		t.Run(fmt.Sprintf("%d", errno), func(t *testing.T) {
			if got := ErrorFromUnix(errno); got != want {
				t.Errorf("ErrorFromUnix(%v) = %v, want %v", errno, got, want)
			}
		})
	}
	if got := ErrorFromUnix(0); got != nil {
		t.Errorf("ErrorFromUnix(0) = %v, want nil", got)
	}
	if got := ErrorFromUnix(unix.EXDEV); got != unix.EXDEV {
		t.Errorf("ErrorFromUnix(EXDEV) = %v, want unchanged errno", got)
	}
}

func TestErrno(t *testing.T) {
	if errno, ok := Errno(EACCES); !ok || errno != unix.EACCES {
		t.Errorf("Errno(EACCES) = (%v, %t), want (%v, true)", errno, ok, unix.EACCES)
	}
	if errno, ok := Errno(unix.EIO); !ok || errno != unix.EIO {
		t.Errorf("Errno(unix.EIO) = (%v, %t), want (%v, true)", errno, ok, unix.EIO)
	}
	if errno, ok := Errno(fmt.Errorf("opening: %w", ENOMEM)); !ok || errno != unix.ENOMEM {
		t.Errorf("Errno(wrapped ENOMEM) = (%v, %t), want (%v, true)", errno, ok, unix.ENOMEM)
	}
	if _, ok := Errno(fmt.Errorf("plain")); ok {
		t.Errorf("Errno(plain error) reported an errno")
	}
}
