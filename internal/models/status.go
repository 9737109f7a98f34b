package models

// Status represents the lifecycle state of a repair job
type Status string

const (
	StatusPendingAssignment      Status = "Pending Assignment"
	StatusAssigned               Status = "Assigned"
	StatusInProgress             Status = "In Progress"
	StatusOnHold                 Status = "On Hold"
	StatusDeviceCollected        Status = "Device Collected"
	StatusAwaitingWorkshopRepair Status = "Awaiting Workshop Repair"
	StatusReadyToClose           Status = "Ready to Close"
	StatusPendingClosure         Status = "Pending Closure"
	StatusClosed                 Status = "Closed"
	StatusReopened               Status = "Reopened"
	StatusCancelled              Status = "Cancelled"
)

// AllStatuses lists every job status in lifecycle order.
var AllStatuses = []Status{
	StatusPendingAssignment,
	StatusAssigned,
	StatusInProgress,
	StatusOnHold,
	StatusDeviceCollected,
	StatusAwaitingWorkshopRepair,
	StatusReadyToClose,
	StatusPendingClosure,
	StatusClosed,
	StatusReopened,
	StatusCancelled,
}

// validTransitions is the directed graph of allowed status changes.
// Cancelled is terminal: no outgoing edges.
var validTransitions = map[Status][]Status{
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

// IsValidStatus checks if a status is a member of the job status enum
func IsValidStatus(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether the edge from -> to exists in the
// transition table.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the statuses reachable from the given status.
func ValidTransitions(from Status) []Status {
	next := validTransitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
