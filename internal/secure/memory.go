// Package secure holds the buffer hygiene helpers used while a secret or the
// image that carries it is in flight.
//
// Go's garbage collector may copy data and strings are immutable, so zeroing
// only shortens the window in which secret material sits in memory. Keep
// secrets and barcode images in []byte form and release them as soon as the
// decoded text has been extracted.
package secure

import (
	"errors"
	"fmt"
	"io"
	"runtime"
)

// ErrTooLarge is returned by ReadBounded when the source exceeds the limit
var ErrTooLarge = errors.New("payload exceeds size limit")

// SecureZeroBytes zeros out a byte slice in a way that won't be
// optimized away by the compiler.
func SecureZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}

	for i := range data {
		data[i] = 0
	}

	runtime.KeepAlive(data)
}

// ReadBounded reads r to EOF but fails with ErrTooLarge once more than limit
// bytes arrive. On error the partial buffer is zeroed before returning.
// A limit <= 0 disables the bound.
func ReadBounded(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		SecureZeroBytes(data)
		return nil, err
	}
	if int64(len(data)) > limit {
		SecureZeroBytes(data)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	return data, nil
}
