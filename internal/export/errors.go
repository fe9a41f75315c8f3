package export

import (
	"errors"
	"fmt"
)

// ErrStorageWrite matches every *StorageWriteError via errors.Is.
var ErrStorageWrite = errors.New("export storage write failed")

// StorageWriteError reports an environment failure while persisting a
// document: an unwritable destination, a full disk or a serialization error.
type StorageWriteError struct {
	Destination string
	Op          string
	Err         error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("export %s %s: %v", e.Op, e.Destination, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

func (e *StorageWriteError) Is(target error) bool {
	return target == ErrStorageWrite
}
