package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Count int64
}

func TestMarshalIsDeterministic(t *testing.T) {
	v := pair{Name: "a", Count: -7}

	first, err := Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestArrayHeaderMatchesStructEncoding(t *testing.T) {
	v := pair{Name: "height", Count: 42}

	whole, err := Marshal(v)
	require.NoError(t, err)

	name, err := Marshal(v.Name)
	require.NoError(t, err)
	count, err := Marshal(v.Count)
	require.NoError(t, err)

	pieced := bytes.Join([][]byte{ArrayHeader(2), name, count}, nil)
	assert.Equal(t, whole, pieced)
}

func TestArrayHeaderLongForms(t *testing.T) {
	assert.Equal(t, []byte{0x97}, ArrayHeader(23))
	assert.Equal(t, []byte{0x98, 0x18}, ArrayHeader(24))
	assert.Equal(t, []byte{0x99, 0x01, 0x00}, ArrayHeader(256))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var v pair

	assert.Error(t, Unmarshal([]byte{0xff, 0x00}, &v))
	assert.Error(t, Unmarshal([]byte("not cbor at all"), &v))

	three, err := Marshal([]interface{}{"a", 1, 2})
	require.NoError(t, err)
	assert.Error(t, Unmarshal(three, &v), "arity mismatch must not decode")
}
