package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultViewState(t *testing.T) {
	vs := DefaultViewState("abc")
	assert.Equal(t, "abc", vs.SessionID)
	assert.Equal(t, RangeAll, vs.Range)
	assert.Equal(t, SortUpcoming, vs.Sort)
	assert.False(t, vs.HidePast)
	assert.False(t, vs.CompletedOnly)
	assert.False(t, vs.IncompleteOnly)
}

func TestCompletedFlagsMutuallyExclusive(t *testing.T) {
	vs := DefaultViewState("abc")

	vs.SetCompletedOnly(true)
	assert.True(t, vs.CompletedOnly)
	assert.False(t, vs.IncompleteOnly)

	vs.SetIncompleteOnly(true)
	assert.False(t, vs.CompletedOnly)
	assert.True(t, vs.IncompleteOnly)

	vs.SetCompletedOnly(true)
	assert.True(t, vs.CompletedOnly)
	assert.False(t, vs.IncompleteOnly)

	// Disabling one never re-enables the other.
	vs.SetCompletedOnly(false)
	assert.False(t, vs.CompletedOnly)
	assert.False(t, vs.IncompleteOnly)
}

func TestValidRangeAndSort(t *testing.T) {
	for _, r := range []string{RangeToday, RangeNext7, RangeNext30, RangeAll} {
		assert.True(t, ValidRange(r), r)
	}
	assert.False(t, ValidRange("yesterday"))
	assert.False(t, ValidRange(""))

	assert.True(t, ValidSort(SortUpcoming))
	assert.True(t, ValidSort(SortNewest))
	assert.False(t, ValidSort("alphabetical"))
}
