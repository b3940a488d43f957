package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"explorewithme/internal/delivery/http/helpers"
	"explorewithme/internal/domain"
)

// AdminController serves event moderation for administrators.
type AdminController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminController(logger *slog.Logger, svc domain.EventService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

// SearchEvents godoc
// @Summary Search events
// @Description Lists events of any initiator, oldest id first. List parameters accept repeated or
// @Description comma-separated values. rangeStart defaults to now; rangeEnd is exclusive.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator ids" collectionFormat(csv)
// @Param states query []string false "PENDING, PUBLISHED or CANCELED" collectionFormat(csv)
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param rangeStart query string false "RFC 3339 or 2006-01-02 15:04:05 (UTC)"
// @Param rangeEnd query string false "RFC 3339 or 2006-01-02 15:04:05 (UTC)"
// @Param from query int false "Rows to skip" default(0)
// @Param size query int false "Window size (max 100)" default(10)
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | date_constraint"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events [get]
func (c *AdminController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	var (
		filter domain.EventFilter
		ok     bool
	)
	if filter.InitiatorIDs, ok = helpers.QueryIDs(w, r, "users"); !ok {
		return
	}
	if filter.CategoryIDs, ok = helpers.QueryIDs(w, r, "categories"); !ok {
		return
	}
	for _, raw := range r.URL.Query()["states"] {
		for name := range strings.SplitSeq(raw, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			st, err := domain.ParseEventState(name)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
				return
			}
			filter.States = append(filter.States, st)
		}
	}
	if filter.RangeStart, ok = helpers.QueryTime(w, r, "rangeStart"); !ok {
		return
	}
	if filter.RangeEnd, ok = helpers.QueryTime(w, r, "rangeEnd"); !ok {
		return
	}
	params, ok := helpers.ParsePagination(w, r)
	if !ok {
		return
	}

	events, total, err := c.Service.SearchEvents(r.Context(), filter, params)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListData{
		Items:      events,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// UpdateEvent godoc
// @Summary Edit any event
// @Description Edits an event and optionally publishes (PUBLISH_EVENT) or rejects (REJECT_EVENT) it.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body UpdateEventAdminRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request | date_constraint"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: validation_failed | invalid_state | conflict"
// @Router /admin/events/{eventID} [patch]
func (c *AdminController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEventByAdmin(r.Context(), eventID, req.toDomain())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// PublishEvent godoc
// @Summary Publish a pending event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: date_constraint"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state | conflict"
// @Router /admin/events/{eventID}/publish [post]
func (c *AdminController) PublishEvent(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.EventService.PublishEvent)
}

// RejectEvent godoc
// @Summary Reject a pending event
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state | conflict"
// @Router /admin/events/{eventID}/reject [post]
func (c *AdminController) RejectEvent(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.EventService.RejectEvent)
}

// transition takes a method expression so the service is only touched once the id is valid.
func (c *AdminController) transition(w http.ResponseWriter, r *http.Request, op func(svc domain.EventService, ctx context.Context, eventID int64) (*domain.Event, error)) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := op(c.Service, r.Context(), eventID)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
