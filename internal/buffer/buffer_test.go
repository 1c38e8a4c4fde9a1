package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddThenDrainPreservesOrder(t *testing.T) {
	b := New()
	b.Add("tickperframe", 1)
	b.Add("tickperframe", 2)
	b.Add("tickperframe", 3)

	items := b.Drain(10)
	require.Len(t, items, 3)
	assert.Equal(t, 1, items[0].Payload)
	assert.Equal(t, 2, items[1].Payload)
	assert.Equal(t, 3, items[2].Payload)
}

func TestDrainRespectsLimitAcrossSubjects(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Add("all_tracks.cam1", i)
	}
	for i := 0; i < 5; i++ {
		b.Add("ptzinfo.cam1", i)
	}

	items := b.Drain(6)
	assert.Len(t, items, 6)
	assert.Equal(t, 4, b.Size())
}

func TestDrainRemovesExhaustedSubjects(t *testing.T) {
	b := New()
	b.Add("tickperframe", 1)
	b.Drain(10)
	assert.Equal(t, 0, b.Size())
	assert.Empty(t, b.SubjectSizes())
}

func TestDrainLeavesRemainderInOrder(t *testing.T) {
	b := New()
	for i := 0; i < 5; i++ {
		b.Add("tickperframe", i)
	}
	first := b.Drain(3)
	require.Len(t, first, 3)
	assert.Equal(t, 0, first[0].Payload)

	second := b.Drain(10)
	require.Len(t, second, 2)
	assert.Equal(t, 3, second[0].Payload)
	assert.Equal(t, 4, second[1].Payload)
}

func TestSizeNeverBlocksOnEmptyBuffer(t *testing.T) {
	b := New()
	assert.Equal(t, 0, b.Size())
	assert.Empty(t, b.Drain(10))
}
