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

// Package linux contains the constants and types needed to interface with a
// Linux-style filesystem.
package linux

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Constants for open(2).
const (
	O_ACCMODE  = unix.O_ACCMODE
	O_RDONLY   = unix.O_RDONLY
	O_WRONLY   = unix.O_WRONLY
	O_RDWR     = unix.O_RDWR
	O_NONBLOCK = unix.O_NONBLOCK
	O_CLOEXEC  = unix.O_CLOEXEC
)

// Values for mode_t.
const (
	FileTypeMask        = 0170000
	ModeSocket          = 0140000
	ModeSymlink         = 0120000
	ModeRegular         = 0100000
	ModeBlockDevice     = 060000
	ModeDirectory       = 040000
	ModeCharacterDevice = 020000
	ModeNamedPipe       = 010000

	ModeSetUID = 04000
	ModeSetGID = 02000
	ModeSticky = 01000

	ModeUserAll     = 0700
	ModeUserRead    = 0400
	ModeUserWrite   = 0200
	ModeUserExec    = 0100
	ModeGroupAll    = 0070
	ModeGroupRead   = 0040
	ModeGroupWrite  = 0020
	ModeGroupExec   = 0010
	ModeOtherAll    = 0007
	ModeOtherRead   = 0004
	ModeOtherWrite  = 0002
	ModeOtherExec   = 0001
	PermissionsMask = 0777
)

// FileMode represents a mode_t.
type FileMode uint32

// Permissions returns just the permission bits.
func (m FileMode) Permissions() FileMode {
	return m & PermissionsMask
}

// FileType returns just the file type bits.
func (m FileMode) FileType() FileMode {
	return m & FileTypeMask
}

// ExtraBits returns everything but the file type and permission bits.
func (m FileMode) ExtraBits() FileMode {
	return m &^ (PermissionsMask | FileTypeMask)
}

// IsRegular returns true if m describes a regular file.
func (m FileMode) IsRegular() bool {
	return m.FileType() == ModeRegular
}

// IsDir returns true if m describes a directory.
func (m FileMode) IsDir() bool {
	return m.FileType() == ModeDirectory
}

// String returns a string representation of m.
func (m FileMode) String() string {
	var s []string
	if ft := m.FileType(); ft != 0 {
		if name, ok := fileTypeNames[ft]; ok {
			s = append(s, name)
		} else {
			s = append(s, fmt.Sprintf("%#o", uint32(ft)))
		}
	}
	for _, b := range modeExtraBits {
		if m&b.bit != 0 {
			s = append(s, b.name)
		}
	}
	s = append(s, fmt.Sprintf("0o%o", uint32(m.Permissions())))
	return strings.Join(s, "|")
}

var modeExtraBits = []struct {
	bit  FileMode
	name string
}{
	{ModeSetUID, "S_ISUID"},
	{ModeSetGID, "S_ISGID"},
	{ModeSticky, "S_ISVTX"},
}

var fileTypeNames = map[FileMode]string{
	ModeSocket:          "S_IFSOCK",
	ModeSymlink:         "S_IFLNK",
	ModeRegular:         "S_IFREG",
	ModeBlockDevice:     "S_IFBLK",
	ModeDirectory:       "S_IFDIR",
	ModeCharacterDevice: "S_IFCHR",
	ModeNamedPipe:       "S_IFIFO",
}

// AccessMode returns the O_ACCMODE portion of open(2) flags.
func AccessMode(flags uint32) uint32 {
	return flags & O_ACCMODE
}

// Stat describes the attributes of a file, in the subset of struct stat
// meaningful to synthetic files. Fields not set by a filesystem are zero.
type Stat struct {
	Mode    FileMode
	Nlink   uint64
	UID     uint32
	GID     uint32
	Size    int64
	Blksize int64
	Blocks  int64
}
