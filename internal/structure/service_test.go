package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortSlotsLeavesInputUntouched(t *testing.T) {
	in := []TimeSlot{
		{ID: "11:00-12:00", StartTime: "11:00", EndTime: "12:00"},
		{ID: "09:00-10:00", StartTime: "09:00", EndTime: "10:00"},
		{ID: "10:00-11:00", StartTime: "10:00", EndTime: "11:00"},
	}

	out := sortSlots(in)

	require.Len(t, out, 3)
	assert.Equal(t, "09:00", out[0].StartTime)
	assert.Equal(t, "10:00", out[1].StartTime)
	assert.Equal(t, "11:00", out[2].StartTime)

	// The caller's slice keeps its original order.
	assert.Equal(t, "11:00", in[0].StartTime)
	assert.Equal(t, "09:00", in[1].StartTime)
	assert.Equal(t, "10:00", in[2].StartTime)
}

func TestSortSlotsEmpty(t *testing.T) {
	assert.Empty(t, sortSlots(nil))
}
