package ledger

import "forestry-backend/internal/models"

// transitions is the single source of truth for distribution status
// legality. Anything not listed fails, including re-entering the current
// status: repeating a transition would repeat its pool mutation.
var transitions = map[models.DistributionStatus][]models.DistributionStatus{
	models.DistributionPending:   {models.DistributionApproved, models.DistributionCancelled},
	models.DistributionApproved:  {models.DistributionDelivered, models.DistributionCancelled},
	models.DistributionDelivered: {models.DistributionReturned},
}

// CanTransition reports whether a distribution may move from one status to
// another.
func CanTransition(from, to models.DistributionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(d *models.Distribution, to models.DistributionStatus) error {
	if !CanTransition(d.Status, to) {
		return InvalidTransitionf("distribution %d cannot move from %s to %s", d.ID, d.Status, to)
	}
	return nil
}
