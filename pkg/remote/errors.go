package remote

import "gitlab.com/tozd/go/errors"

var (
	// ErrConnectivity marks failures of the transport itself (cannot
	// dial, session dropped). Fatal to the remainder of a sequential
	// batch.
	ErrConnectivity = errors.New("remote transport unreachable")

	// ErrNotFound marks an item-level rejection: the document id does
	// not exist on the remote store.
	ErrNotFound = errors.New("document not found")
)

// IsConnectivity reports whether err is a transport-level fault rather
// than an item-level rejection.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// IsNotFound reports whether err is an item-level "no such document".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
