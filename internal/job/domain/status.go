package domain

// Status is a job's position in the delivery lifecycle.
type Status string

const (
	StatusPlanned        Status = "PLANNED"
	StatusAssigned       Status = "ASSIGNED"
	StatusEnroutePickup  Status = "ENROUTE_PICKUP"
	StatusLoaded         Status = "LOADED"
	StatusEnrouteDropoff Status = "ENROUTE_DROPOFF"
	StatusDelivered      Status = "DELIVERED"
	StatusClosed         Status = "CLOSED"
	StatusCanceled       Status = "CANCELED"
)

var successor = map[Status]Status{
	StatusPlanned:        StatusAssigned,
	StatusAssigned:       StatusEnroutePickup,
	StatusEnroutePickup:  StatusLoaded,
	StatusLoaded:         StatusEnrouteDropoff,
	StatusEnrouteDropoff: StatusDelivered,
	StatusDelivered:      StatusClosed,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusAssigned, StatusEnroutePickup, StatusLoaded,
		StatusEnrouteDropoff, StatusDelivered, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCanceled
}

// CanTransition reports whether from → to is a legal lifecycle transition.
// CANCELED is reachable from any non-terminal state; every other move must
// follow the linear delivery chain.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCanceled {
		return true
	}
	return successor[from] == to
}

// Delivered reports whether s is DELIVERED or later (but not canceled).
func (s Status) Delivered() bool {
	return s == StatusDelivered || s == StatusClosed
}
