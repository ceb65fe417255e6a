package serials

import "stockroom/pkg/models"

// allowedTransitions is the explicit status lifecycle for a serialized unit.
// A SOLD unit only ever moves through the return flow.
var allowedTransitions = map[models.SerialStatus][]models.SerialStatus{
	models.SerialInStock: {
		models.SerialReserved,
		models.SerialSold,
		models.SerialDefective,
		models.SerialQuarantine,
		models.SerialInTransit,
	},
	models.SerialReserved: {
		models.SerialInStock,
		models.SerialDefective,
		models.SerialQuarantine,
		models.SerialInTransit,
	},
	models.SerialSold: {
		models.SerialReturned,
	},
}

func CanTransition(from, to models.SerialStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
