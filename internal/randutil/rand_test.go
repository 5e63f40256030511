package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func draw(n int, next func() int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = next()
	}
	return out
}

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	assert.Equal(t, draw(8, a.Int63), draw(8, b.Int63))
	assert.NotEqual(t, draw(8, New(42).Int63), draw(8, New(43).Int63))
}

func TestStreamsDiffer(t *testing.T) {
	t.Parallel()

	assert.Equal(t, draw(8, Stream(7, 1).Int63), draw(8, Stream(7, 1).Int63))
	assert.NotEqual(t, draw(8, Stream(7, 0).Int63), draw(8, Stream(7, 1).Int63))
	assert.NotEqual(t, draw(8, Stream(7, 0).Int63), draw(8, New(7).Int63))
}
