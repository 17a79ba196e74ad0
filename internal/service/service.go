// Package service orchestrates the departure flows: declaration submission,
// cancellation requests and downstream response ingestion. It composes the
// ledger store and the downstream submitter; it holds no state of its own.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/submission"
	"go.uber.org/zap"
)

// Field names read out of the stored message XML. The body itself is kept
// verbatim; only these leaves are ever interpreted.
const (
	referenceNumberElement = "RefNumHEA4"
	mrnElement             = "DocNumHEA5"
)

var (
	// ErrMissingReferenceNumber is returned when a declaration carries no
	// business reference number.
	ErrMissingReferenceNumber = errors.New("declaration has no reference number")

	// ErrUnsupportedMessageType is returned when an inbound message type has
	// no departure status mapped to it.
	ErrUnsupportedMessageType = errors.New("unsupported response message type")
)

// DepartureService runs the departure lifecycle flows.
type DepartureService struct {
	departures repository.Departures
	submitter  submission.Submitter
	log        *zap.Logger
	now        func() time.Time
}

// NewDepartureService creates the service over the given store and submitter.
func NewDepartureService(departures repository.Departures, submitter submission.Submitter, log *zap.Logger) *DepartureService {
	return &DepartureService{
		departures: departures,
		submitter:  submitter,
		log:        log,
		now:        time.Now,
	}
}

// CreateDeparture records a new departure from the given declaration body,
// submits the declaration downstream and transitions the departure according
// to the outcome. The returned departure reflects the stored state after the
// transition; a downstream rejection is visible as SubmissionFailed, not as
// an error.
func (s *DepartureService) CreateDeparture(ctx context.Context, eori string, channel model.ChannelType, body string) (*model.Departure, error) {
	reference, ok := xmlElementText(body, referenceNumberElement)
	if !ok {
		return nil, ErrMissingReferenceNumber
	}

	now := s.now()
	departure := model.NewDeparture(eori, channel, reference, now)
	message := model.NewOutboundMessage(model.MessageTypeDepartureDeclaration, now, body)

	if err := s.departures.Insert(ctx, departure); err != nil {
		return nil, err
	}
	if err := s.departures.AddMessage(ctx, departure.ID, message); err != nil {
		return nil, err
	}

	messageID := model.MessageID(0)
	if s.submitSucceeded(ctx, message) {
		err := s.departures.SetDepartureAndMessageStatus(ctx, departure.ID, messageID, model.DepartureStatusSubmitted, model.MessageStatusSubmissionSucceeded)
		if err != nil {
			return nil, err
		}
	} else {
		err := s.departures.SetDepartureAndMessageStatus(ctx, departure.ID, messageID, model.DepartureStatusSubmissionFailed, model.MessageStatusSubmissionFailed)
		if err != nil {
			return nil, err
		}
	}

	return s.departures.Get(ctx, departure.ID)
}

// SubmitCancellation appends a cancellation request to the departure's ledger
// and submits it downstream. On acceptance the departure moves to
// DeclarationCancellationRequest; on rejection only the message is marked
// failed and the departure status is left alone.
func (s *DepartureService) SubmitCancellation(ctx context.Context, departure *model.Departure, body string) (*model.Departure, error) {
	message := model.NewOutboundMessage(model.MessageTypeCancellationRequest, s.now(), body)
	messageID := departure.NextMessageID()

	if err := s.departures.AddMessage(ctx, departure.ID, message); err != nil {
		return nil, err
	}

	if s.submitSucceeded(ctx, message) {
		err := s.departures.SetDepartureAndMessageStatus(ctx, departure.ID, messageID, model.DepartureStatusDeclarationCancellationRequest, model.MessageStatusSubmissionSucceeded)
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.departures.SetMessageStatus(ctx, departure.ID, messageID, model.MessageStatusSubmissionFailed); err != nil {
			return nil, err
		}
	}

	return s.departures.Get(ctx, departure.ID)
}

// ReceiveResponse appends a downstream response message to the departure and
// moves it to the status the message type implies. For an MRN allocation the
// movement reference number is read from the body and recorded in the same
// write.
func (s *DepartureService) ReceiveResponse(ctx context.Context, id model.DepartureID, messageType model.MessageType, body string) error {
	status, ok := model.DepartureStatusForResponse(messageType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedMessageType, messageType)
	}

	var mrn *string
	if messageType == model.MessageTypeMrnAllocated {
		if value, found := xmlElementText(body, mrnElement); found {
			mrn = &value
		} else {
			s.log.Warn("MRN allocation message carries no MRN", zap.String("departureId", string(id)))
		}
	}

	message := model.NewInboundMessage(messageType, s.now(), body)
	return s.departures.AddResponseMessage(ctx, id, message, status, mrn)
}

// submitSucceeded posts the message downstream and reports acceptance. A
// failed call is treated the same as a downstream rejection: the message did
// not arrive, and the caller marks it failed.
func (s *DepartureService) submitSucceeded(ctx context.Context, message model.Message) bool {
	result, err := s.submitter.Submit(ctx, message)
	if err != nil {
		s.log.Error("failed to reach downstream service",
			zap.String("messageType", string(message.Type)),
			zap.Error(err),
		)
		return false
	}
	return result.Successful()
}
