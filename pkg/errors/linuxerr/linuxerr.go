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

// Package linuxerr contains syscall error codes exported as error interface
// pointers. This allows for fast comparison and return operations comparable
// to unix.Errno constants.
package linuxerr

import (
	goerrors "errors"

	"golang.org/x/sys/unix"
	"gvisor.dev/critmon/pkg/errors"
)

// The following errors are semantically identical to the unix.Errno of the
// same name. Since the types are distinct they are not directly comparable;
// use Equals or ToUnix instead.
var (
	noError *errors.Error = nil
	EPERM                 = errors.New(unix.EPERM, "operation not permitted")
	ENOENT                = errors.New(unix.ENOENT, "no such file or directory")
	EIO                   = errors.New(unix.EIO, "I/O error")
	EBADF                 = errors.New(unix.EBADF, "bad file number")
	ENOMEM                = errors.New(unix.ENOMEM, "out of memory")
	EACCES                = errors.New(unix.EACCES, "permission denied")
	EEXIST                = errors.New(unix.EEXIST, "file exists")
	ENOTDIR               = errors.New(unix.ENOTDIR, "not a directory")
	EISDIR                = errors.New(unix.EISDIR, "is a directory")
	EINVAL                = errors.New(unix.EINVAL, "invalid argument")
	ESPIPE                = errors.New(unix.ESPIPE, "illegal seek")
	EROFS                 = errors.New(unix.EROFS, "read-only file system")
	ENOSYS                = errors.New(unix.ENOSYS, "invalid system call number")
)

var errnoToError = map[unix.Errno]*errors.Error{
	unix.EPERM:   EPERM,
	unix.ENOENT:  ENOENT,
	unix.EIO:     EIO,
	unix.EBADF:   EBADF,
	unix.ENOMEM:  ENOMEM,
	unix.EACCES:  EACCES,
	unix.EEXIST:  EEXIST,
	unix.ENOTDIR: ENOTDIR,
	unix.EISDIR:  EISDIR,
	unix.EINVAL:  EINVAL,
	unix.ESPIPE:  ESPIPE,
	unix.EROFS:   EROFS,
	unix.ENOSYS:  ENOSYS,
}

// ErrorFromUnix returns a linuxerr from a unix.Errno. Errnos without a
// linuxerr counterpart are returned unchanged.
func ErrorFromUnix(err unix.Errno) error {
	if err == unix.Errno(0) {
		return nil
	}
	if e, ok := errnoToError[err]; ok {
		return e
	}
	return err
}

// ToUnix converts a linuxerr to a unix.Errno.
func ToUnix(e *errors.Error) unix.Errno {
	var unixErr unix.Errno
	if e != noError {
		unixErr = e.Errno()
	}
	return unixErr
}

// Equals compares a linuxerr to a given error.
func Equals(e *errors.Error, err error) bool {
	var unixErr unix.Errno
	if e != noError {
		unixErr = e.Errno()
	}
	if err == nil {
		err = noError
	}
	return e == err || unixErr == err
}

// Errno extracts the errno carried by err, if any. It understands both
// *errors.Error and unix.Errno, including when wrapped.
func Errno(err error) (unix.Errno, bool) {
	var le *errors.Error
	if goerrors.As(err, &le) && le != noError {
		return le.Errno(), true
	}
	var ue unix.Errno
	if goerrors.As(err, &ue) {
		return ue, true
	}
	return 0, false
}
