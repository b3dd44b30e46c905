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

package atomicbitops

import (
	"runtime"
	"sync"
	"testing"
)

func TestStoreMax(t *testing.T) {
	var u Uint64
	for _, tc := range []struct {
		v      uint64
		raised bool
		want   uint64
	}{
		{v: 5, raised: true, want: 5},
		{v: 3, raised: false, want: 5},
		{v: 5, raised: false, want: 5},
		{v: 9, raised: true, want: 9},
	} {
		if got := u.StoreMax(tc.v); got != tc.raised {
			t.Errorf("StoreMax(%d) = %t, want %t", tc.v, got, tc.raised)
		}
		if got := u.Load(); got != tc.want {
			t.Errorf("after StoreMax(%d): Load() = %d, want %d", tc.v, got, tc.want)
		}
	}
	if got := u.Swap(0); got != 9 {
		t.Errorf("Swap(0) = %d, want 9", got)
	}
	if got := u.Load(); got != 0 {
		t.Errorf("Load() after Swap(0) = %d, want 0", got)
	}
}

func TestStoreMaxConcurrent(t *testing.T) {
	var u Uint64
	var wg sync.WaitGroup
	n := runtime.GOMAXPROCS(0) * 4
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				u.StoreMax(v)
			}
		}(uint64(i))
	}
	wg.Wait()
	if got := u.Load(); got != uint64(n) {
		t.Errorf("Load() = %d, want %d", got, n)
	}
}

func TestIncUnlessAtLeast(t *testing.T) {
	var i Int64
	if !i.IncUnlessAtLeast(2) || !i.IncUnlessAtLeast(2) {
		t.Fatalf("first two increments under limit 2 failed")
	}
	if i.IncUnlessAtLeast(2) {
		t.Errorf("third increment under limit 2 succeeded")
	}
	if got := i.Load(); got != 2 {
		t.Errorf("Load() = %d, want 2", got)
	}
	if !i.IncUnlessAtLeast(0) {
		t.Errorf("increment with no limit failed")
	}
}
