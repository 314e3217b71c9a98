package stringutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortHash(t *testing.T) {
	assert.Equal(t, "", ShortHash(""))
	assert.Equal(t, "0000abcd", ShortHash("0000abcd"))
	assert.Equal(t, "0000abcd..89abcdef", ShortHash("0000abcd1111222233334444555566667777888889abcdef"))
}
