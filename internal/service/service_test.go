package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const declarationBody = `<CC015B><HEAHEA><RefNumHEA4>LRN-001</RefNumHEA4></HEAHEA></CC015B>`
const mrnAllocationBody = `<CC028A><HEAHEA><DocNumHEA5>21GB00001234567890</DocNumHEA5></HEAHEA></CC028A>`

// memoryDepartures mimics the store's observable behavior in memory so the
// orchestration logic can be tested without a database.
type memoryDepartures struct {
	departures map[model.DepartureID]*model.Departure
	failWith   error
}

func newMemoryDepartures() *memoryDepartures {
	return &memoryDepartures{departures: map[model.DepartureID]*model.Departure{}}
}

func (m *memoryDepartures) Insert(ctx context.Context, departure *model.Departure) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, exists := m.departures[departure.ID]; exists {
		return repository.ErrDepartureAlreadyExists
	}
	copied := *departure
	copied.Messages = append([]model.Message{}, departure.Messages...)
	m.departures[departure.ID] = &copied
	return nil
}

func (m *memoryDepartures) Get(ctx context.Context, id model.DepartureID) (*model.Departure, error) {
	departure, exists := m.departures[id]
	if !exists {
		return nil, repository.ErrDepartureNotFound
	}
	copied := *departure
	copied.Messages = append([]model.Message{}, departure.Messages...)
	return &copied, nil
}

func (m *memoryDepartures) FetchAllByOwner(ctx context.Context, eori string) ([]model.Departure, error) {
	result := []model.Departure{}
	for _, departure := range m.departures {
		if departure.EORINumber == eori {
			result = append(result, *departure)
		}
	}
	return result, nil
}

func (m *memoryDepartures) AddMessage(ctx context.Context, id model.DepartureID, message model.Message) error {
	departure, exists := m.departures[id]
	if !exists {
		return repository.ErrDepartureNotFound
	}
	if message.IsOutbound() {
		message.CorrelationID = departure.NextMessageCorrelationID
		departure.NextMessageCorrelationID++
	}
	departure.Messages = append(departure.Messages, message)
	departure.LastUpdated = message.Received
	return nil
}

func (m *memoryDepartures) AddResponseMessage(ctx context.Context, id model.DepartureID, message model.Message, status model.DepartureStatus, mrn *string) error {
	departure, exists := m.departures[id]
	if !exists {
		return repository.ErrDepartureNotFound
	}
	departure.Messages = append(departure.Messages, message)
	departure.Status = status
	departure.LastUpdated = message.Received
	if mrn != nil {
		departure.MovementReferenceNumber = mrn
	}
	return nil
}

func (m *memoryDepartures) SetDepartureAndMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, departureStatus model.DepartureStatus, messageStatus model.MessageStatus) error {
	departure, exists := m.departures[id]
	if !exists {
		return repository.ErrDepartureNotFound
	}
	if int(messageID) >= len(departure.Messages) {
		return repository.ErrMessageNotFound
	}
	departure.Status = departureStatus
	departure.Messages[messageID].Status = messageStatus
	return nil
}

func (m *memoryDepartures) SetMessageStatus(ctx context.Context, id model.DepartureID, messageID model.MessageID, status model.MessageStatus) error {
	departure, exists := m.departures[id]
	if !exists {
		return repository.ErrDepartureNotFound
	}
	if int(messageID) >= len(departure.Messages) {
		return repository.ErrMessageNotFound
	}
	departure.Messages[messageID].Status = status
	return nil
}

type stubSubmitter struct {
	result    submission.Result
	err       error
	submitted []model.Message
}

func (s *stubSubmitter) Submit(ctx context.Context, message model.Message) (submission.Result, error) {
	s.submitted = append(s.submitted, message)
	if s.err != nil {
		return submission.Result{}, s.err
	}
	return s.result, nil
}

func newTestService(t *testing.T, store *memoryDepartures, submitter *stubSubmitter) *DepartureService {
	svc := NewDepartureService(store, submitter, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateDepartureSubmitsAndTransitions(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{result: submission.Classify(202)}
	svc := newTestService(t, store, submitter)

	departure, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelAPI, declarationBody)

	require.NoError(t, err)
	assert.Equal(t, "LRN-001", departure.ReferenceNumber)
	assert.Equal(t, model.DepartureStatusSubmitted, departure.Status)
	require.Len(t, departure.Messages, 1)
	assert.Equal(t, model.MessageTypeDepartureDeclaration, departure.Messages[0].Type)
	assert.Equal(t, model.MessageStatusSubmissionSucceeded, departure.Messages[0].Status)
	assert.Equal(t, 1, departure.Messages[0].CorrelationID)
	assert.Equal(t, 2, departure.NextMessageCorrelationID)

	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, declarationBody, submitter.submitted[0].Body)
}

func TestCreateDepartureMarksRejectedSubmissionFailed(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{result: submission.Classify(502)}
	svc := newTestService(t, store, submitter)

	departure, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelWeb, declarationBody)

	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusSubmissionFailed, departure.Status)
	assert.Equal(t, model.MessageStatusSubmissionFailed, departure.Messages[0].Status)
}

func TestCreateDepartureMarksUnreachableDownstreamFailed(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{err: errors.New("connection refused")}
	svc := newTestService(t, store, submitter)

	departure, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelWeb, declarationBody)

	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusSubmissionFailed, departure.Status)
}

func TestCreateDepartureRejectsBodyWithoutReference(t *testing.T) {
	store := newMemoryDepartures()
	svc := newTestService(t, store, &stubSubmitter{})

	_, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelWeb, `<CC015B><HEAHEA/></CC015B>`)

	assert.ErrorIs(t, err, ErrMissingReferenceNumber)
	assert.Empty(t, store.departures)
}

func TestSubmitCancellationMovesDepartureOnAcceptance(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{result: submission.Classify(202)}
	svc := newTestService(t, store, submitter)

	created, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelAPI, declarationBody)
	require.NoError(t, err)

	cancellationBody := `<CC014A><HEAHEA><DocNumHEA5>X</DocNumHEA5></HEAHEA></CC014A>`
	departure, err := svc.SubmitCancellation(context.Background(), created, cancellationBody)

	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusDeclarationCancellationRequest, departure.Status)
	require.Len(t, departure.Messages, 2)
	assert.Equal(t, model.MessageTypeCancellationRequest, departure.Messages[1].Type)
	assert.Equal(t, model.MessageStatusSubmissionSucceeded, departure.Messages[1].Status)
	assert.Equal(t, 2, departure.Messages[1].CorrelationID)
}

func TestSubmitCancellationKeepsStatusOnRejection(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{result: submission.Classify(202)}
	svc := newTestService(t, store, submitter)

	created, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelAPI, declarationBody)
	require.NoError(t, err)

	submitter.result = submission.Classify(500)
	departure, err := svc.SubmitCancellation(context.Background(), created, `<CC014A/>`)

	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusSubmitted, departure.Status)
	assert.Equal(t, model.MessageStatusSubmissionFailed, departure.Messages[1].Status)
}

func TestReceiveResponseRecordsMRNOnAllocation(t *testing.T) {
	store := newMemoryDepartures()
	submitter := &stubSubmitter{result: submission.Classify(202)}
	svc := newTestService(t, store, submitter)

	created, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelAPI, declarationBody)
	require.NoError(t, err)

	err = svc.ReceiveResponse(context.Background(), created.ID, model.MessageTypeMrnAllocated, mrnAllocationBody)
	require.NoError(t, err)

	departure, err := store.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DepartureStatusMrnAllocated, departure.Status)
	require.NotNil(t, departure.MovementReferenceNumber)
	assert.Equal(t, "21GB00001234567890", *departure.MovementReferenceNumber)
	require.Len(t, departure.Messages, 2)
	assert.Equal(t, model.MessageKindInbound, departure.Messages[1].Kind)
	assert.Zero(t, departure.Messages[1].CorrelationID)
}

func TestReceiveResponseRejectsNonResponseType(t *testing.T) {
	svc := newTestService(t, newMemoryDepartures(), &stubSubmitter{})

	err := svc.ReceiveResponse(context.Background(), model.NewDepartureID(), model.MessageTypeDepartureDeclaration, "<CC015B/>")

	assert.ErrorIs(t, err, ErrUnsupportedMessageType)
}

func TestReceiveResponseStatusMapping(t *testing.T) {
	cases := []struct {
		messageType model.MessageType
		status      model.DepartureStatus
	}{
		{model.MessageTypePositiveAcknowledgement, model.DepartureStatusPositiveAcknowledgement},
		{model.MessageTypeDeclarationRejected, model.DepartureStatusRejected},
		{model.MessageTypeReleaseForTransit, model.DepartureStatusReleasedForTransit},
		{model.MessageTypeNoReleaseForTransit, model.DepartureStatusNoReleaseForTransit},
		{model.MessageTypeCancellationDecision, model.DepartureStatusCancellationDecision},
		{model.MessageTypeWriteOffNotification, model.DepartureStatusWriteOffNotification},
		{model.MessageTypeGuaranteeNotValid, model.DepartureStatusGuaranteeNotValid},
	}

	for _, tc := range cases {
		t.Run(string(tc.messageType), func(t *testing.T) {
			store := newMemoryDepartures()
			svc := newTestService(t, store, &stubSubmitter{result: submission.Classify(202)})

			created, err := svc.CreateDeparture(context.Background(), "GB123456789000", model.ChannelAPI, declarationBody)
			require.NoError(t, err)

			body := fmt.Sprintf("<%s/>", tc.messageType)
			require.NoError(t, svc.ReceiveResponse(context.Background(), created.ID, tc.messageType, body))

			departure, err := store.Get(context.Background(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.status, departure.Status)
		})
	}
}
