package ident

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIsFixedWidthDigits(t *testing.T) {
	a := New(bytes.NewReader(bytes.Repeat([]byte{0xab, 0x01, 0x7f, 0x33}, 1024)))
	for i := 0; i < 50; i++ {
		gid := a.Next()
		require.Len(t, gid, Width)
		for _, r := range gid {
			assert.True(t, r >= '0' && r <= '9', "gid %q has non digit", gid)
		}
	}
}

func TestFormatPadsSmallValues(t *testing.T) {
	var id uuid.UUID
	id[15] = 7
	assert.Equal(t, "0000000000000007", Format(id))
}

func TestSameStreamSameGIDs(t *testing.T) {
	stream := bytes.Repeat([]byte("0123456789abcdef"), 64)
	a := New(bytes.NewReader(stream))
	b := New(bytes.NewReader(stream))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}
