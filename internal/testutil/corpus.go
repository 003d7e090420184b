package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SampleCProgramFile is the C program file of the sample corpus.
const SampleCProgramFile = "programs/p001_s0001_stripped_calc_3_12.c"

// SampleCProgramID is the canonical id derived from SampleCProgramFile.
const SampleCProgramID = "p001_s0001_calc_3_12"

// SamplePythonProgramFile is the Python program file of the sample corpus.
const SamplePythonProgramFile = "programs/p002_s0002_flow_sum_1_6.py"

// SamplePythonProgramID is the canonical id derived from SamplePythonProgramFile.
const SamplePythonProgramID = "p002_s0002_flow_sum_1_6"

const sampleCProgram = `// benchmark sample

int calc(int a) {
    int x = a;
    int y = a + 1;
    if (a > 2) {
        x = y * 2;
    }
    int z = x + y;
    int w = 0;
    w = z + x;
    return w;
}
`

const sampleCLabels = `version: 1
language: c
programs:
  - file: programs/p001_s0001_stripped_calc_3_12.c
    edges:
      data:
        - source: {line: 4, symbol: x}
          target: {line: 8, symbol: x}
        - source: {line: 7, symbol: x}
          target: {line: 8, symbol: x}
        - source: {line: 4, symbol: x}
          target: {line: 10, symbol: x}
        - source: {line: 7, symbol: x}
          target: {line: 10, symbol: x}
        - source: {line: 10, symbol: w}
          target: {line: 11, symbol: w}
      control:
        - source: {line: 6}
          target: {line: 7}
      infoflow:
        - source: {line: 4, symbol: x}
          target: {line: 8}
          chain:
            - {line: 4, symbol: x}
            - {line: 8}
        - source: {line: 7, symbol: x}
          target: {line: 8}
        - source: {line: 5, symbol: y}
          target: {line: 8}
        - source: {line: 6}
          target: {line: 8}
          chain:
            - {line: 6}
            - {line: 7, symbol: x}
            - {line: 8}
        - source: {line: 6}
          target: {line: 7}
        - source: {line: 5, symbol: y}
          target: {line: 10}
          chain:
            - {line: 5, symbol: y}
            - {line: 8, symbol: z}
            - {line: 10}
        - source: {line: 8, symbol: z}
          target: {line: 10}
        - source: {line: 10, symbol: w}
          target: {line: 11}
`

const sampleCScan = `version: 1
entries:
  "12":
    file: programs/p001_s0001_stripped_calc_3_12.c
    function: calc
    start_line: 3
    end_line: 12
    lines: [3, 4, 5, 6, 7, 8, 9, 10, 11, 12]
    branches: [6]
    defs:
      a: [3]
      x: [4, 7]
      y: [5]
      z: [8]
      w: [9, 10]
    uses:
      a: [4, 5, 6]
      y: [7, 8]
      x: [8, 10]
      z: [10]
      w: [11]
`

const samplePythonProgram = `def flow_sum(a):
    b = a
    if b > 0:
        b = b - 1
    c = b
    return c
`

const samplePythonLabels = `version: 1
language: python
programs:
  - file: programs/p002_s0002_flow_sum_1_6.py
    edges:
      data:
        - source: {line: 2, symbol: b}
          target: {line: 3, symbol: b}
        - source: {line: 2, symbol: b}
          target: {line: 4, symbol: b}
        - source: {line: 2, symbol: b}
          target: {line: 5, symbol: b}
        - source: {line: 4, symbol: b}
          target: {line: 5, symbol: b}
      control:
        - source: {line: 3}
          target: {line: 4}
      infoflow:
        - source: {line: 2, symbol: b}
          target: {line: 3}
        - source: {line: 2, symbol: b}
          target: {line: 4}
        - source: {line: 3}
          target: {line: 4}
        - source: {line: 2, symbol: b}
          target: {line: 5}
        - source: {line: 4, symbol: b}
          target: {line: 5}
        - source: {line: 3}
          target: {line: 5}
          chain:
            - {line: 3}
            - {line: 4, symbol: b}
            - {line: 5}
        - source: {line: 2, symbol: b}
          target: {line: 6}
          chain:
            - {line: 2, symbol: b}
            - {line: 5, symbol: c}
            - {line: 6}
        - source: {line: 5, symbol: c}
          target: {line: 6}
        - source: {line: 3}
          target: {line: 6}
`

const samplePythonScan = `version: 1
entries:
  "7":
    file: programs/p002_s0002_flow_sum_1_6.py
    function: flow_sum
    start_line: 1
    end_line: 6
    lines: [1, 2, 3, 4, 5, 6]
    branches: [3]
    defs:
      a: [1]
      b: [2, 4]
      c: [5]
    uses:
      a: [2]
      b: [3, 4, 5]
      c: [6]
`

// SampleCorpusFiles returns the sample corpus as corpus-root-relative paths
// and contents, for fixture writers that are not testing helpers.
func SampleCorpusFiles() map[string]string {
	files := map[string]string{}
	files[filepath.Join("c", "labels.yaml")] = sampleCLabels
	files[filepath.Join("c", "scan.yaml")] = sampleCScan
	files[filepath.Join("c", SampleCProgramFile)] = sampleCProgram
	files[filepath.Join("python", "labels.yaml")] = samplePythonLabels
	files[filepath.Join("python", "scan.yaml")] = samplePythonScan
	files[filepath.Join("python", SamplePythonProgramFile)] = samplePythonProgram
	return files
}

// WriteSampleCorpus writes a small two-language corpus under dir and returns
// its root. The C program exercises multi-definition variables and a branch,
// the Python program exercises chains through a reassigned variable.
func WriteSampleCorpus(t testing.TB, dir string) string {
	t.Helper()
	root := filepath.Join(dir, "corpus")
	for name, content := range SampleCorpusFiles() {
		WriteFile(t, filepath.Join(root, name), content)
	}
	return root
}
