package frontier

import (
	"path"
	"runtime"
)

// loadTestConfig loads filename from testdata/ and panics if it cannot be
// read, the same pattern the original walker package used for its own
// LoadTestConfig/GetTestFileDir helpers.
func loadTestConfig(filename string) {
	if err := ReadConfigFile(path.Join(testFileDir(), filename)); err != nil {
		panic(err.Error())
	}
}

// testFileDir returns the directory holding shared test fixtures.
func testFileDir() string {
	_, p, _, ok := runtime.Caller(0)
	if !ok {
		panic("failed to get location of test source file")
	}
	return path.Join(path.Dir(p), "testdata")
}
