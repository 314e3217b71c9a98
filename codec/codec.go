// Package codec is the canonical binary encoding used for hashing and for
// persisted entities. It is CBOR with Core Deterministic Encoding; every
// persisted struct is tagged `cbor:",toarray"` so its fields are encoded
// positionally in declaration order. Reordering or retyping a field changes
// every hash computed over it.
package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build decoder: %v", err))
	}
}

// Marshal returns the canonical encoding of v.
func Marshal(v interface{}) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data into v. Trailing bytes, unknown fields and arrays of
// the wrong arity are errors.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}

// ArrayHeader returns the CBOR major-type-4 header for an array of n items.
// Concatenating it with the encodings of n values yields the same bytes as
// encoding a toarray struct holding those values.
func ArrayHeader(n int) []byte {
	const majorArray = 0x80
	switch {
	case n < 24:
		return []byte{byte(majorArray | n)}
	case n <= 0xff:
		return []byte{majorArray | 24, byte(n)}
	default:
		return []byte{majorArray | 25, byte(n >> 8), byte(n)}
	}
}
