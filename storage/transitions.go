package storage

import "restobook/pkg/models"

var reservationTransitions = map[string][]string{
	models.ActionAccept: {models.ReservationPending},
	models.ActionReject: {models.ReservationPending},
	models.ActionCancel: {models.ReservationPending, models.ReservationAccepted},
}

var statusAfterAction = map[string]string{
	models.ActionAccept: models.ReservationAccepted,
	models.ActionReject: models.ReservationRejected,
	models.ActionCancel: models.ReservationCancelled,
}

func ValidReservationAction(action, fromStatus string) bool {
	allowed, ok := reservationTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}

func StatusAfterAction(action string) (string, bool) {
	status, ok := statusAfterAction[action]
	return status, ok
}

// ValidOrderTransition allows single forward or backward steps along the
// order workflow; skipping is rejected.
func ValidOrderTransition(from, to string) bool {
	fromIdx, toIdx := -1, -1
	for i, status := range models.OrderFlow {
		if status == from {
			fromIdx = i
		}
		if status == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	diff := toIdx - fromIdx
	return diff == 1 || diff == -1
}
