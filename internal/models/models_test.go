package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapStore(t *testing.T) {
	assert.NoError(t, WrapStore("x", nil))
	assert.Same(t, ErrNotFound, WrapStore("x", ErrNotFound))

	wrappedNF := fmt.Errorf("find: %w", ErrNotFound)
	assert.Equal(t, wrappedNF, WrapStore("x", wrappedNF))

	cause := errors.New("disk full")
	err := WrapStore("store", cause)
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "store", se.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store store: disk full", err.Error())

	assert.Same(t, err, WrapStore("other", err), "already wrapped errors keep their op")
}

func TestChunkPlan(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, NewChunkPlan(0).Size)
	assert.Equal(t, DefaultChunkSize, NewChunkPlan(-5).Size)

	p := NewChunkPlan(4)
	cases := map[int64]int{0: 0, 1: 1, 4: 1, 5: 2, 8: 2, 9: 3}
	for length, want := range cases {
		assert.Equal(t, want, p.Count(length), "length %d", length)
	}
}

func TestFileInfoAndClone(t *testing.T) {
	f := File{
		ID:       "1",
		Name:     "a.txt",
		Length:   3,
		Metadata: Metadata{"k": "v"},
		Chunks:   []Chunk{{Index: 0, Size: 3}},
	}

	c := f.Clone()
	c.Metadata["k"] = "changed"
	c.Chunks[0].Size = 99
	assert.Equal(t, "v", f.Metadata["k"])
	assert.EqualValues(t, 3, f.Chunks[0].Size)

	info := f.Info()
	assert.Equal(t, FileInfo{ID: "1", Filename: "a.txt", Length: 3, Metadata: Metadata{"k": "v"}}, info)

	assert.True(t, All().MatchesAll())
	assert.False(t, ByID("1").MatchesAll())
}
