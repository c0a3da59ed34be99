package candidates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackLatestPhase(t *testing.T) {
	track := Track{Phases: []Phase{
		{Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), Status: StatusHrPipeline},
		{Date: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), Status: StatusFirstInterview},
		{Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Status: StatusPassedScreening},
	}}

	latest, ok := track.LatestPhase()
	require.True(t, ok)
	assert.Equal(t, StatusFirstInterview, latest.Status)
	assert.Equal(t, StatusFirstInterview, track.Status())
}

func TestTrackWithoutPhases(t *testing.T) {
	track := Track{}
	_, ok := track.LatestPhase()
	assert.False(t, ok)
	assert.Equal(t, HireStatus(0), track.Status())
}

func TestAssignIDsFillsMissingOnly(t *testing.T) {
	c := Candidate{
		Name:   "Alice",
		Skills: []Skill{{Description: "Go"}, {ID: "s1", Description: "SQL"}},
		Tracks: []Track{{AccountID: "a1", OpportunityID: "o1"}},
	}
	assignIDs(&c)

	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, c.Skills[0].ID)
	assert.Equal(t, "s1", c.Skills[1].ID)
	assert.NotEmpty(t, c.Tracks[0].ID)
}
