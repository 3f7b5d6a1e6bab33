package http

import (
	"net/http"
	"strconv"
	"strings"
)

type subjectCreateRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

type subjectUpdateRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if v := strings.TrimSpace(r.URL.Query().Get("category_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = id
	}

	subjects, err := s.ledger.ListSubjects(r.Context(), categoryID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, err := s.ledger.CreateSubject(r.Context(), req.CategoryID, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, subject)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	subject, err := s.ledger.GetSubject(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req subjectUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, err := s.ledger.UpdateSubject(r.Context(), id, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteSubject(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
