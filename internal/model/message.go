package model

import "time"

// MessageType identifies the business meaning of a ledger message.
type MessageType string

const (
	MessageTypeDepartureDeclaration    MessageType = "IE015"
	MessageTypeCancellationRequest     MessageType = "IE014"
	MessageTypeDeclarationRejected     MessageType = "IE016"
	MessageTypePositiveAcknowledgement MessageType = "IE928"
	MessageTypeMrnAllocated            MessageType = "IE028"
	MessageTypeReleaseForTransit       MessageType = "IE029"
	MessageTypeNoReleaseForTransit     MessageType = "IE051"
	MessageTypeCancellationDecision    MessageType = "IE009"
	MessageTypeWriteOffNotification    MessageType = "IE045"
	MessageTypeGuaranteeNotValid       MessageType = "IE055"
)

// MessageKind discriminates the two message variants in the ledger.
// It is persisted verbatim so that decoded messages keep their shape.
type MessageKind string

const (
	// MessageKindOutbound marks a trader-originated message that carries a
	// submission status and a correlation id.
	MessageKindOutbound MessageKind = "outboundWithStatus"

	// MessageKindInbound marks a downstream response. Inbound messages carry
	// no status and are never mutated after append.
	MessageKindInbound MessageKind = "inboundWithoutStatus"
)

// MessageID is the zero-based position of a message in a departure's ledger.
// It equals the message's index at append time and is stable forever.
type MessageID int

// Message is one entry in a departure's append-only ledger.
//
// The Kind field is the union discriminant: outbound messages carry Status
// and CorrelationID, inbound messages carry neither. CorrelationID is not set
// by constructors; the repository assigns it from the departure's counter in
// the same atomic write that appends the message.
type Message struct {
	Kind          MessageKind   `bson:"kind" json:"kind"`
	Type          MessageType   `bson:"messageType" json:"messageType"`
	Received      time.Time     `bson:"received" json:"received"`
	Body          string        `bson:"body" json:"body"`
	Status        MessageStatus `bson:"status,omitempty" json:"status,omitempty"`
	CorrelationID int           `bson:"messageCorrelationId,omitempty" json:"messageCorrelationId,omitempty"`
}

// NewOutboundMessage builds a trader-originated message awaiting submission.
func NewOutboundMessage(t MessageType, received time.Time, body string) Message {
	return Message{
		Kind:     MessageKindOutbound,
		Type:     t,
		Received: normalize(received),
		Body:     body,
		Status:   MessageStatusSubmissionPending,
	}
}

// NewInboundMessage builds a downstream response message.
func NewInboundMessage(t MessageType, received time.Time, body string) Message {
	return Message{
		Kind:     MessageKindInbound,
		Type:     t,
		Received: normalize(received),
		Body:     body,
	}
}

// IsOutbound reports whether the message carries a submission status.
func (m Message) IsOutbound() bool {
	return m.Kind == MessageKindOutbound
}

// normalize truncates to millisecond precision so that timestamps survive a
// BSON round trip unchanged.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
