package fleet

import "os"

// silenceStdout runs fn with os.Stdout pointed at the null device. Handle
// teardown hooks belong to external collaborators and may print directly to
// the console; during shutdown that output is suppressed.
//
// If the null device cannot be opened, fn runs with stdout untouched.
func silenceStdout(fn func() error) error {
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return fn()
	}
	defer devnull.Close()

	orig := os.Stdout
	os.Stdout = devnull
	defer func() { os.Stdout = orig }()

	return fn()
}
