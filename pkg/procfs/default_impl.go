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
	"context"

	"gvisor.dev/critmon/pkg/errors/linuxerr"
)

// FileDefaultImpl may be embedded by implementations of FileImpl to obtain
// the behaviour of an operation left NULL in a file operations table: the
// operation is unsupported.
type FileDefaultImpl struct{}

// Read implements FileImpl.Read.
func (FileDefaultImpl) Read(ctx context.Context, dst []byte) (int, error) {
	return 0, linuxerr.ENOSYS
}

// Write implements FileImpl.Write.
func (FileDefaultImpl) Write(ctx context.Context, src []byte) (int, error) {
	return 0, linuxerr.ENOSYS
}

// Seek implements FileImpl.Seek.
func (FileDefaultImpl) Seek(ctx context.Context, offset int64, whence int32) (int64, error) {
	return 0, linuxerr.ESPIPE
}

// Poll implements FileImpl.Poll.
func (FileDefaultImpl) Poll(ctx context.Context, events uint32) (uint32, error) {
	return 0, linuxerr.ENOSYS
}

// ReadDir implements FileImpl.ReadDir.
func (FileDefaultImpl) ReadDir(ctx context.Context) ([]string, error) {
	return nil, linuxerr.ENOSYS
}

// Dup implements FileImpl.Dup.
func (FileDefaultImpl) Dup(ctx context.Context) (FileImpl, error) {
	return nil, linuxerr.ENOSYS
}

// Close implements FileImpl.Close.
func (FileDefaultImpl) Close(ctx context.Context) error {
	return nil
}

// EntryNoDirectory may be embedded by leaf entries. Directory operations are
// unsupported.
type EntryNoDirectory struct{}

// OpenDir implements Entry.OpenDir.
func (EntryNoDirectory) OpenDir(ctx context.Context) (FileImpl, error) {
	return nil, linuxerr.ENOSYS
}
