package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"tradedesk/internal/meetings/service"
	apperrors "tradedesk/pkg/errors"
	httputil "tradedesk/pkg/http"
	"tradedesk/pkg/logger"
	"tradedesk/pkg/middleware"
	"tradedesk/pkg/model"
)

type MeetingHandler struct {
	service service.MeetingService
	log     *logger.Logger
}

func NewMeetingHandler(service service.MeetingService, log *logger.Logger) *MeetingHandler {
	return &MeetingHandler{
		service: service,
		log:     log,
	}
}

func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	meetings, err := h.service.List(r.Context(), middleware.ActorIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, meetings, len(meetings)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *MeetingHandler) Classified(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	buckets, err := h.service.Classified(r.Context(), middleware.ActorIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "Classified", err)
		return
	}

	if err := httputil.WriteSuccess(w, buckets); err != nil {
		h.log.Error("failed to write success response", "handler", "Classified", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireID(w, ps, "GetByID")
	if !ok {
		return
	}

	meeting, err := h.service.Get(r.Context(), middleware.ActorIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, meeting); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
			Code:  apperrors.CodeBadRequest,
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	meeting, err := h.service.Book(r.Context(), middleware.ActorIDFromContext(r.Context()), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, meeting); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *MeetingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireID(w, ps, "Confirm")
	if !ok {
		return
	}

	meeting, err := h.service.Confirm(r.Context(), middleware.ActorIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, meeting); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.requireID(w, ps, "Cancel")
	if !ok {
		return
	}

	meeting, err := h.service.Cancel(r.Context(), middleware.ActorIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, meeting); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *MeetingHandler) requireID(w http.ResponseWriter, ps httprouter.Params, handler string) (string, bool) {
	id := ps.ByName("id")
	if id != "" {
		return id, true
	}
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "ID parameter is required",
		Code:  apperrors.CodeBadRequest,
	}); err != nil {
		h.log.Error("failed to write bad request response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
	return "", false
}

func (h *MeetingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *MeetingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/meetings", h.List)
	router.POST("/api/v1/meetings", h.Book)
	router.GET("/api/v1/meetings/classified", h.Classified)
	router.GET("/api/v1/meetings/id/:id", h.GetByID)
	router.POST("/api/v1/meetings/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/meetings/id/:id/cancel", h.Cancel)
}
