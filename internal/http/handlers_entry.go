package http

import (
	"net/http"

	"pocketpal/internal/core"
)

type entryCreateRequest struct {
	Date       core.Date  `json:"date"`
	CategoryID int64      `json:"category_id"`
	SubjectID  int64      `json:"subject_id"`
	Debit      core.Money `json:"debit"`
	Credit     core.Money `json:"credit"`
}

// entryUpdateRequest supports partial updates; absent fields keep their
// stored values.
type entryUpdateRequest struct {
	Date       *core.Date  `json:"date,omitempty"`
	CategoryID *int64      `json:"category_id,omitempty"`
	SubjectID  *int64      `json:"subject_id,omitempty"`
	Debit      *core.Money `json:"debit,omitempty"`
	Credit     *core.Money `json:"credit,omitempty"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ListEntries(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.ledger.CreateEntry(r.Context(), core.Entry{
		Date:       req.Date,
		CategoryID: req.CategoryID,
		SubjectID:  req.SubjectID,
		Debit:      req.Debit,
		Credit:     req.Credit,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.ledger.GetEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req entryUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.ledger.GetEntry(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.CategoryID != nil {
		entry.CategoryID = *req.CategoryID
	}
	if req.SubjectID != nil {
		entry.SubjectID = *req.SubjectID
	}
	if req.Debit != nil {
		entry.Debit = *req.Debit
	}
	if req.Credit != nil {
		entry.Credit = *req.Credit
	}

	updated, err := s.ledger.UpdateEntry(r.Context(), entry)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
