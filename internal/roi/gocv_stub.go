//go:build !gocv

package roi

import "fmt"

func newGocvBackend() (Backend, error) {
	return nil, fmt.Errorf("%w: rebuild with -tags=gocv", ErrBackendUnavailable)
}
