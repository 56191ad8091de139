package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumBytesDeterministic(t *testing.T) {
	a := SumBytes([]byte("hello world"))
	b := SumBytes([]byte("hello world"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.Equal(t, strings.ToUpper(a), a)
}

func TestSumBytesDiffersOnContent(t *testing.T) {
	a := SumBytes([]byte("hello"))
	b := SumBytes([]byte("world"))
	assert.NotEqual(t, a, b)
}

func TestSumMatchesSumBytes(t *testing.T) {
	data := []byte("content addressed storage")
	viaReader, err := Sum(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, SumBytes(data), viaReader)
}

func TestEmptyDigestConstant(t *testing.T) {
	assert.Equal(t, SumBytes(nil), EmptyDigest)
	assert.Equal(t, SumBytes([]byte{}), EmptyDigest)
}
