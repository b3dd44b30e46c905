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

package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gvisor.dev/critmon/critmon/config"
)

const scenarioSnapshot = `
cpus:
- cpu: 0
  preempt_max: 1.5s
- cpu: 1
  crit_max: 2.25s
`

func testConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	testFlags := flag.NewFlagSet("test", flag.ContinueOnError)
	config.RegisterFlags(testFlags)
	if err := testFlags.Parse(append([]string{"--ncpus=2"}, args...)); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	conf, err := config.NewFromFlags(testFlags)
	if err != nil {
		t.Fatalf("NewFromFlags: %v", err)
	}
	return conf
}

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCat(t *testing.T) {
	snapshot := writeSnapshot(t, scenarioSnapshot)
	for _, test := range []struct {
		name    string
		args    []string
		bufSize int
		want    string
	}{
		{
			name:    "both columns",
			bufSize: 100,
			want:    "0,1.500000000,0.000000000\n1,0.000000000,2.250000000\n",
		},
		{
			name:    "preempt only",
			args:    []string{"--crit-max=false"},
			bufSize: 100,
			want:    "0,1.500000000\n1,0.000000000\n",
		},
		{
			name:    "no columns",
			args:    []string{"--crit-max=false", "--preempt-max=false"},
			bufSize: 1,
			want:    "0\n1\n",
		},
		{
			name:    "khz clock",
			args:    []string{"--perf-frequency=1000"},
			bufSize: 4096,
			want:    "0,1.500000000,0.000000000\n1,0.000000000,2.250000000\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &Cat{bufSize: test.bufSize, snapshot: snapshot}
			if err := c.run(context.Background(), testConfig(t, test.args...), &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			if diff := cmp.Diff(test.want, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		cat  *Cat
		err  string
	}{
		{"zero bufsize", &Cat{bufSize: 0}, "bufsize must be positive"},
		{"missing snapshot", &Cat{bufSize: 1, snapshot: "/nonexistent/snapshot.yaml"}, "loading snapshot"},
		{"cpu out of range", &Cat{bufSize: 1, snapshot: writeSnapshot(t, "cpus:\n- cpu: 5\n  preempt_max: 1s\n")}, "out of range"},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := test.cat.run(context.Background(), testConfig(t), &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("run = %v, want error containing %q", err, test.err)
			}
		})
	}
}

func TestStat(t *testing.T) {
	var out bytes.Buffer
	if err := (&Stat{}).run(context.Background(), testConfig(t), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "critmon\tmode=S_IFREG|0o444\tnlink=1\tsize=0\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestCatSaveSnapshot(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "saved.yaml")
	c := &Cat{bufSize: 4096, snapshot: writeSnapshot(t, scenarioSnapshot), saveSnapshot: saved}
	var out bytes.Buffer
	if err := c.run(context.Background(), testConfig(t), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if want := "0,1.500000000,0.000000000\n1,0.000000000,2.250000000\n"; out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}

	// The saved file seeds an identical document.
	out.Reset()
	c = &Cat{bufSize: 4096, snapshot: saved}
	if err := c.run(context.Background(), testConfig(t), &out); err != nil {
		t.Fatalf("run with saved snapshot: %v", err)
	}
	if want := "0,1.500000000,0.000000000\n1,0.000000000,2.250000000\n"; out.String() != want {
		data, _ := os.ReadFile(saved)
		t.Errorf("output from saved snapshot %q = %q, want %q", data, out.String(), want)
	}
}
