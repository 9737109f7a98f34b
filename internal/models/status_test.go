package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPendingAssignment:      {StatusAssigned, StatusOnHold, StatusCancelled},
		StatusAssigned:               {StatusInProgress, StatusOnHold, StatusDeviceCollected, StatusCancelled},
		StatusInProgress:             {StatusOnHold, StatusDeviceCollected, StatusAwaitingWorkshopRepair, StatusReadyToClose, StatusCancelled},
		StatusOnHold:                 {StatusAssigned, StatusInProgress, StatusCancelled},
		StatusDeviceCollected:        {StatusAwaitingWorkshopRepair, StatusReadyToClose, StatusCancelled},
		StatusAwaitingWorkshopRepair: {StatusReadyToClose, StatusCancelled},
		StatusReadyToClose:           {StatusPendingClosure, StatusCancelled},
		StatusPendingClosure:         {StatusClosed, StatusCancelled},
		StatusClosed:                 {StatusReopened},
		StatusReopened:               {StatusAssigned, StatusInProgress, StatusOnHold, StatusCancelled},
		StatusCancelled:              {},
	}

	// Check every (from, to) pair against the expected edge set
	for _, from := range AllStatuses {
		edges := map[Status]bool{}
		for _, to := range allowed[from] {
			edges[to] = true
		}
		for _, to := range AllStatuses {
			assert.Equal(t, edges[to], CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestCanTransition_CancelledIsTerminal(t *testing.T) {
	for _, to := range AllStatuses {
		assert.False(t, CanTransition(StatusCancelled, to),
			"Cancelled must have no outgoing transition, got edge to %s", to)
	}
	assert.Empty(t, ValidTransitions(StatusCancelled))
}

func TestCanTransition_SameStatusIsNotAnEdge(t *testing.T) {
	for _, s := range AllStatuses {
		assert.False(t, CanTransition(s, s), "no self edge expected for %s", s)
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("Completed"))
	assert.False(t, IsValidStatus(""))
}

func TestValidTransitions_ReturnsCopy(t *testing.T) {
	first := ValidTransitions(StatusPendingAssignment)
	first[0] = "Tampered"
	second := ValidTransitions(StatusPendingAssignment)
	assert.Equal(t, StatusAssigned, second[0])
}
