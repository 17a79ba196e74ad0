// Package api exposes the movements HTTP surface: the trader-facing
// departures routes and the internal route downstream responses arrive on.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Kolanot/transits-movements-trader-at-departure/internal/authz"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/model"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/repository"
	"github.com/Kolanot/transits-movements-trader-at-departure/internal/service"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/http/problems"
	"github.com/Kolanot/transits-movements-trader-at-departure/pkg/security/enrolment"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeaderMessageType carries the business message type on the internal
// response-ingest route.
const HeaderMessageType = "X-Message-Type"

// maxBodyBytes bounds inbound message bodies. Declarations run to a few
// hundred kilobytes at most.
const maxBodyBytes = 5 << 20

// Handler serves the movements routes.
type Handler struct {
	gate       *authz.Gate
	service    *service.DepartureService
	departures repository.Departures
	log        *zap.Logger
}

// NewHandler creates the movements handler.
func NewHandler(gate *authz.Gate, svc *service.DepartureService, departures repository.Departures, log *zap.Logger) *Handler {
	return &Handler{
		gate:       gate,
		service:    svc,
		departures: departures,
		log:        log,
	}
}

// messageView is a ledger message together with its stable position.
type messageView struct {
	MessageID int `json:"messageId"`
	model.Message
}

func messageViews(messages []model.Message) []messageView {
	views := make([]messageView, len(messages))
	for i, m := range messages {
		views[i] = messageView{MessageID: i, Message: m}
	}
	return views
}

func (h *Handler) createDeparture(c *gin.Context) {
	e := enrolment.EnrolmentFromContext(c)
	channel, ok := submissionChannel(e)
	if !ok {
		h.renderProblem(c, http.StatusBadRequest, fmt.Sprintf("unknown channel %q", e.Channel))
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}

	departure, err := h.service.CreateDeparture(c, e.EORINumber, channel, body)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Location", "/movements/departures/"+string(departure.ID))
	c.JSON(http.StatusAccepted, departure)
}

func (h *Handler) listDepartures(c *gin.Context) {
	e := enrolment.EnrolmentFromContext(c)

	departures, err := h.departures.FetchAllByOwner(c, e.EORINumber)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departures": departures})
}

func (h *Handler) getDeparture(c *gin.Context) {
	departure, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, departure)
}

func (h *Handler) listMessages(c *gin.Context) {
	departure, ok := h.loadOwned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messageViews(departure.Messages)})
}

func (h *Handler) getMessage(c *gin.Context) {
	departure, ok := h.loadOwned(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("messageId"))
	if err != nil {
		h.renderProblem(c, http.StatusBadRequest, "messageId must be an integer")
		return
	}

	message, found := departure.MessageAt(model.MessageID(index))
	if !found {
		h.renderProblem(c, http.StatusNotFound, "message not found")
		return
	}

	c.JSON(http.StatusOK, messageView{MessageID: index, Message: message})
}

func (h *Handler) submitCancellation(c *gin.Context) {
	departure, ok := h.loadOwned(c)
	if !ok {
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}

	updated, err := h.service.SubmitCancellation(c, departure, body)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, updated)
}

func (h *Handler) receiveResponse(c *gin.Context) {
	messageType := model.MessageType(c.GetHeader(HeaderMessageType))
	if messageType == "" {
		h.renderProblem(c, http.StatusBadRequest, "missing "+HeaderMessageType+" header")
		return
	}

	body, ok := h.readBody(c)
	if !ok {
		return
	}

	id := model.DepartureID(c.Param("departureId"))
	if err := h.service.ReceiveResponse(c, id, messageType, body); err != nil {
		h.renderError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// loadOwned fetches the departure named in the path on behalf of the calling
// trader, rendering the error response itself when that fails.
func (h *Handler) loadOwned(c *gin.Context) (*model.Departure, bool) {
	e := enrolment.EnrolmentFromContext(c)
	id := model.DepartureID(c.Param("departureId"))

	departure, err := h.gate.LoadForEORI(c, id, e.EORINumber)
	if err != nil {
		h.renderError(c, err)
		return nil, false
	}
	return departure, true
}

func (h *Handler) readBody(c *gin.Context) (string, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.renderProblem(c, http.StatusBadRequest, "failed to read request body")
		return "", false
	}
	if len(body) == 0 {
		h.renderProblem(c, http.StatusBadRequest, "empty request body")
		return "", false
	}
	return string(body), true
}

func submissionChannel(e *enrolment.Enrolment) (model.ChannelType, bool) {
	if e.Channel == "" {
		return model.ChannelWeb, true
	}
	channel := model.ChannelType(e.Channel)
	return channel, channel.IsValid()
}

// renderError maps a typed flow error to its HTTP status. Transient store
// failures stay 500: they must never be mistaken for absence.
func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrNotFound), errors.Is(err, repository.ErrDepartureNotFound):
		h.renderProblem(c, http.StatusNotFound, "departure not found")
	case errors.Is(err, repository.ErrDepartureAlreadyExists):
		h.renderProblem(c, http.StatusConflict, "departure already exists")
	case errors.Is(err, repository.ErrMessageNotFound):
		h.renderProblem(c, http.StatusConflict, "no message at that position")
	case errors.Is(err, service.ErrMissingReferenceNumber):
		h.renderProblem(c, http.StatusBadRequest, "declaration has no reference number")
	case errors.Is(err, service.ErrUnsupportedMessageType):
		h.renderProblem(c, http.StatusBadRequest, "unsupported message type")
	default:
		h.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		h.renderProblem(c, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) renderProblem(c *gin.Context, status int, detail string) {
	problem := problems.New(status, detail)
	problem.Instance = c.Request.URL.Path
	c.AbortWithStatusJSON(status, problem)
}
