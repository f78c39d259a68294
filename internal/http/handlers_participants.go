package http

import (
	"net/http"

	"chitieu/internal/core"
	"chitieu/internal/log"
)

type participantRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	roster, err := s.service.ListParticipants(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list participants failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list participants")
		return
	}
	writeJSON(w, http.StatusOK, toParticipantViews(roster))
}

func (s *Server) handleCreateParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.service.CreateParticipant(r.Context(), core.Participant{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "create participant failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to create participant")
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantView(p))
}

func (s *Server) handleUpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := core.Participant{
		ID:    r.PathValue("id"),
		Name:  req.Name,
		Color: req.Color,
	}
	if err := s.service.UpdateParticipant(r.Context(), p); err != nil {
		s.respondWriteError(w, r, err, "update participant")
		return
	}
	writeJSON(w, http.StatusOK, toParticipantView(p))
}
