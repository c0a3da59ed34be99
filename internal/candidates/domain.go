// Package candidates tracks people moving through hiring pipelines.
package candidates

import "time"

// ClassName identifies candidate documents to the field permission rules.
const ClassName = "Candidate"

// HireStatus is the stage a candidate has reached on a track.
type HireStatus int

const (
	StatusHrPipeline      HireStatus = 1
	StatusPassedScreening HireStatus = 3
	StatusFailed          HireStatus = 5
	StatusFirstInterview  HireStatus = 6
	StatusSecondInterview HireStatus = 8
	StatusFailedInterview HireStatus = 9
	StatusDecisionPending HireStatus = 10
	StatusOffer           HireStatus = 11
	StatusWithdrawn       HireStatus = 12
	StatusOfferDeclined   HireStatus = 13
	StatusHired           HireStatus = 15
)

// FinalStatus is the terminal outcome of a track.
type FinalStatus int

const (
	FinalActiveInProgress FinalStatus = 1
	FinalClosedHired      FinalStatus = 2
	FinalClosedNotHired   FinalStatus = 3
)

// Candidate is a person being tracked across one or more opportunities.
type Candidate struct {
	ID     string  `json:"id"`
	Name   string  `json:"name" validate:"required"`
	Skills []Skill `json:"skills"`
	Tracks []Track `json:"tracks"`
}

// Skill is a tagged capability of a candidate.
type Skill struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Track follows a candidate through the phases of one opportunity.
type Track struct {
	ID            string      `json:"id"`
	AccountID     string      `json:"accountId" validate:"required"`
	OpportunityID string      `json:"opportunityId" validate:"required"`
	HireReason    string      `json:"hireReason"`
	Phases        []Phase     `json:"phases"`
	FinalStatus   FinalStatus `json:"finalStatus"`
}

// Phase is one dated status entry on a track.
type Phase struct {
	Date   time.Time  `json:"date"`
	Status HireStatus `json:"status"`
}

// LatestPhase returns the most recent phase of the track, or false when the
// track has none yet.
func (t Track) LatestPhase() (Phase, bool) {
	var latest Phase
	found := false
	for _, p := range t.Phases {
		if !found || p.Date.After(latest.Date) {
			latest = p
			found = true
		}
	}
	return latest, found
}

// Status is the status of the latest phase, or zero when the track is empty.
func (t Track) Status() HireStatus {
	if p, ok := t.LatestPhase(); ok {
		return p.Status
	}
	return 0
}
