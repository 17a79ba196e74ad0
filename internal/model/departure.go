package model

import (
	"time"

	"github.com/google/uuid"
)

// DepartureID uniquely identifies a departure movement. It is assigned once
// at creation and never changes.
type DepartureID string

// NewDepartureID returns a fresh unique departure id.
func NewDepartureID() DepartureID {
	return DepartureID(uuid.NewString())
}

// Departure is the root record tracking one customs movement and its
// append-only message ledger.
//
// Messages is append-only: a message's MessageID equals its index at append
// time and is never reassigned. NextMessageCorrelationID is the counter the
// repository consumes when appending outbound messages; it starts at 1 and
// increases by exactly 1 per appended outbound message.
type Departure struct {
	ID                       DepartureID     `bson:"_id" json:"departureId"`
	Channel                  ChannelType     `bson:"channel" json:"channel"`
	EORINumber               string          `bson:"eoriNumber" json:"eoriNumber"`
	MovementReferenceNumber  *string         `bson:"movementReferenceNumber,omitempty" json:"movementReferenceNumber,omitempty"`
	ReferenceNumber          string          `bson:"referenceNumber" json:"referenceNumber"`
	Status                   DepartureStatus `bson:"status" json:"status"`
	Created                  time.Time       `bson:"created" json:"created"`
	LastUpdated              time.Time       `bson:"lastUpdated" json:"lastUpdated"`
	Messages                 []Message       `bson:"messages" json:"messages"`
	NextMessageCorrelationID int             `bson:"nextMessageCorrelationId" json:"-"`
}

// NewDeparture builds a departure in its initial state with an empty ledger.
func NewDeparture(eori string, channel ChannelType, referenceNumber string, created time.Time) *Departure {
	created = normalize(created)
	return &Departure{
		ID:                       NewDepartureID(),
		Channel:                  channel,
		EORINumber:               eori,
		ReferenceNumber:          referenceNumber,
		Status:                   DepartureStatusInitialized,
		Created:                  created,
		LastUpdated:              created,
		Messages:                 []Message{},
		NextMessageCorrelationID: 1,
	}
}

// MessageAt returns the message at the given ledger position.
func (d *Departure) MessageAt(id MessageID) (Message, bool) {
	if id < 0 || int(id) >= len(d.Messages) {
		return Message{}, false
	}
	return d.Messages[id], true
}

// NextMessageID is the ledger position the next appended message will take.
func (d *Departure) NextMessageID() MessageID {
	return MessageID(len(d.Messages))
}
