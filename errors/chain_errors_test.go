package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainErrorIsMatchesByCode(t *testing.T) {
	err := Wrap(ErrCodeCorrupt, io.ErrUnexpectedEOF, "block %s", "abcd")

	assert.True(t, Is(err, ErrCorrupt))
	assert.False(t, Is(err, ErrNotFound))
	assert.True(t, Is(err, io.ErrUnexpectedEOF), "cause must stay reachable through Unwrap")
}

func TestChainErrorSurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("append: %w", NewError(ErrCodeClock, "timestamp before parent"))

	assert.True(t, Is(err, ErrClock))
	assert.Equal(t, ErrCodeClock, CodeOf(err))
	assert.Equal(t, ErrorCode(""), CodeOf(io.EOF))
}

func TestChainErrorRendersJSON(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  NewError(ErrCodeNotFound, "tip missing"),
			want: `{"code":"not_found","message":"tip missing"}`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeStoreUnavailable, io.EOF, "open %s", "data"),
			want: `{"code":"store_unavailable","message":"open data","cause":"EOF"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
