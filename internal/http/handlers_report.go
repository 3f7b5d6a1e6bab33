package http

import (
	"net/http"
	"strings"
	"time"

	"pocketpal/internal/core"
)

// handleReport serves the aggregated view. The period query parameter picks
// the window: all (default), month, 30d, or custom with start and end dates.
// A custom period missing either bound falls back to all time.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	selection, err := parsePeriodSelection(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.ledger.BuildReport(r.Context(), selection.Window(time.Now()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func parsePeriodSelection(r *http.Request) (core.PeriodSelection, error) {
	q := r.URL.Query()

	kind := core.PeriodKind(strings.TrimSpace(q.Get("period")))
	if kind == "" {
		kind = core.PeriodAllTime
	}
	switch kind {
	case core.PeriodAllTime, core.PeriodCurrentMonth, core.PeriodLast30Days, core.PeriodCustomRange:
	default:
		return core.PeriodSelection{}, errInvalidPeriod
	}

	selection := core.PeriodSelection{Kind: kind}

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return core.PeriodSelection{}, errInvalidStart
		}
		selection.Start = core.DateOf(t)
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return core.PeriodSelection{}, errInvalidEnd
		}
		selection.End = core.DateOf(t)
	}

	return selection, nil
}

var (
	errInvalidPeriod = &badParamError{"unknown period, expected all, month, 30d or custom"}
	errInvalidStart  = &badParamError{"invalid start date, expected YYYY-MM-DD"}
	errInvalidEnd    = &badParamError{"invalid end date, expected YYYY-MM-DD"}
)

type badParamError struct{ msg string }

func (e *badParamError) Error() string { return e.msg }
