package model

// DepartureStatus is the lifecycle state of a departure movement.
// The set is closed; statuses advance only through repository transitions.
type DepartureStatus string

const (
	DepartureStatusInitialized                    DepartureStatus = "Initialized"
	DepartureStatusSubmitted                      DepartureStatus = "DepartureSubmitted"
	DepartureStatusSubmissionFailed               DepartureStatus = "SubmissionFailed"
	DepartureStatusPositiveAcknowledgement        DepartureStatus = "PositiveAcknowledgement"
	DepartureStatusMrnAllocated                   DepartureStatus = "MrnAllocated"
	DepartureStatusReleasedForTransit             DepartureStatus = "ReleasedForTransit"
	DepartureStatusNoReleaseForTransit            DepartureStatus = "NoReleaseForTransit"
	DepartureStatusRejected                       DepartureStatus = "DepartureRejected"
	DepartureStatusDeclarationCancellationRequest DepartureStatus = "DeclarationCancellationRequest"
	DepartureStatusCancellationDecision           DepartureStatus = "CancellationDecision"
	DepartureStatusWriteOffNotification           DepartureStatus = "WriteOffNotification"
	DepartureStatusGuaranteeNotValid              DepartureStatus = "GuaranteeNotValid"
)

// MessageStatus is the submission state of an outbound message.
// SubmissionSucceeded and SubmissionFailed are terminal.
type MessageStatus string

const (
	MessageStatusSubmissionPending   MessageStatus = "SubmissionPending"
	MessageStatusSubmissionSucceeded MessageStatus = "SubmissionSucceeded"
	MessageStatusSubmissionFailed    MessageStatus = "SubmissionFailed"
)

// ChannelType identifies the origin of a departure submission.
type ChannelType string

const (
	ChannelWeb ChannelType = "web"
	ChannelAPI ChannelType = "api"
)

// IsValid reports whether the channel is one of the known origins.
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelWeb, ChannelAPI:
		return true
	}
	return false
}

// DepartureStatusForResponse maps an inbound response message type to the
// departure status it moves the movement into. The second return value is
// false for message types that are not downstream responses.
func DepartureStatusForResponse(t MessageType) (DepartureStatus, bool) {
	switch t {
	case MessageTypePositiveAcknowledgement:
		return DepartureStatusPositiveAcknowledgement, true
	case MessageTypeMrnAllocated:
		return DepartureStatusMrnAllocated, true
	case MessageTypeDeclarationRejected:
		return DepartureStatusRejected, true
	case MessageTypeReleaseForTransit:
		return DepartureStatusReleasedForTransit, true
	case MessageTypeNoReleaseForTransit:
		return DepartureStatusNoReleaseForTransit, true
	case MessageTypeCancellationDecision:
		return DepartureStatusCancellationDecision, true
	case MessageTypeWriteOffNotification:
		return DepartureStatusWriteOffNotification, true
	case MessageTypeGuaranteeNotValid:
		return DepartureStatusGuaranteeNotValid, true
	}
	return "", false
}
