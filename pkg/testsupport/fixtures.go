package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// ReadFixture returns the bytes of a testdata file, failing the test when it
// cannot be read.
func ReadFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

// LoadGolden decodes a JSON golden file into v.
func LoadGolden(tb testing.TB, path string, v any) {
	tb.Helper()
	if err := json.Unmarshal(ReadFixture(tb, path), v); err != nil {
		tb.Fatalf("decode golden %s: %v", path, err)
	}
}
