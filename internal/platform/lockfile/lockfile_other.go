//go:build !unix

package lockfile

// Acquire always fails on hosts without flock.
func Acquire(string) (Lock, error) {
	return nil, ErrUnsupported
}
