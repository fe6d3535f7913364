package collection

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Key is a 256-bit digest suitable for use as a native Go map key even when
// the hashed value T is not itself comparable (e.g. contains a slice or
// map). Two values that are structurally equal (same gob encoding) always
// hash to the same Key.
type Key [blake2b.Size256]byte

// String renders the key as hex, useful for logging and debugging.
func (k Key) String() string {
	return fmt.Sprintf("%x", [blake2b.Size256]byte(k))
}

// HashKey canonically encodes value with encoding/gob — which serializes
// struct fields in declaration order, giving a stable byte sequence for
// structurally-equal values — and hashes the result with blake2b-256.
//
// Hashing must be consistent with structural equality: composite keys
// require a hash that respects field order, which gob provides. Floating
// point values, maps, functions, and other domains that cannot encode
// deterministically are not suitable inputs. HashKey returns an error only
// where gob itself cannot encode the value (e.g. functions, channels);
// floats and maps encode without error, and a map's encoding follows its
// iteration order, so its key is not stable.
func HashKey[T any](value T) (Key, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return Key{}, fmt.Errorf("collection: hashing key: %w", err)
	}
	return blake2b.Sum256(buf.Bytes()), nil
}

// MustHashKey is HashKey for callers that have already validated value is
// encodable (e.g. in tests, or for types registered with gob at init
// time). It panics on encode failure.
func MustHashKey[T any](value T) Key {
	k, err := HashKey(value)
	if err != nil {
		panic(err)
	}
	return k
}
