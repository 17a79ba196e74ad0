package repository

import (
	"fmt"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// byID matches a single departure by its id.
func byID(id model.DepartureID) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

// byOwner matches every departure belonging to the given trader.
func byOwner(eori string) bson.D {
	return bson.D{{Key: "eoriNumber", Value: eori}}
}

// byIDAndMessageIndex matches a departure by id and additionally requires
// that a message currently occupies the given ledger position. Guarding
// message-status writes with this selector rejects transitions that target a
// position nothing was ever appended to, instead of silently matching the
// departure and writing into a hole.
func byIDAndMessageIndex(id model.DepartureID, messageID model.MessageID) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: fmt.Sprintf("messages.%d", messageID), Value: bson.D{{Key: "$exists", Value: true}}},
	}
}
