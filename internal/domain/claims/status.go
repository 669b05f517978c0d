package claims

import "fmt"

// Status is the claim's position in the review pipeline. Transitions only
// follow the directed graph below; nothing regresses or skips a stage.
type Status string

const (
	StatusPending             Status = "pending"
	StatusCoordinatorApproved Status = "coordinator_approved"
	StatusCoordinatorRejected Status = "coordinator_rejected"
	StatusManagerApproved     Status = "manager_approved"
	StatusManagerRejected     Status = "manager_rejected"
	StatusProcessed           Status = "processed"
)

var transitions = map[Status][]Status{
	StatusPending:             {StatusCoordinatorApproved, StatusCoordinatorRejected},
	StatusCoordinatorApproved: {StatusManagerApproved, StatusManagerRejected},
	StatusManagerApproved:     {StatusProcessed},
	StatusCoordinatorRejected: nil,
	StatusManagerRejected:     nil,
	StatusProcessed:           nil,
}

func ValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !ValidStatus(s) {
		return "", fmt.Errorf("unknown claim status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether moving from current to next is legal.
func CanTransition(current, next Status) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition can leave the status.
func Terminal(s Status) bool {
	return ValidStatus(s) && len(transitions[s]) == 0
}
