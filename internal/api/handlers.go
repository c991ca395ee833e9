package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/candlewaker/countdown"
	"github.com/rustyeddy/candlewaker/journal"
	"github.com/rustyeddy/candlewaker/tasks"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "candlewaker",
	})
}

// Tasks

type taskRequest struct {
	Name         string `json:"name"`
	Period       int    `json:"period"`
	NotifyBefore int    `json:"notifyBefore"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tasks.Tasks())
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.tasks.Add(r.Context(), req.Name, req.Period, req.NotifyBefore)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var u tasks.Update
	if err := decodeBody(r, &u); err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.tasks.Update(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCountdown(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeJSON(w, http.StatusOK, []countdown.TaskSnapshot{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.runner.Snapshots())
}

// Journal

func entryQuery(r *http.Request) (journal.EntryQuery, error) {
	v := r.URL.Query()
	q := journal.EntryQuery{
		AccountID:    v.Get("accountId"),
		InstrumentID: v.Get("instrumentId"),
		StrategyID:   v.Get("strategyId"),
		Ascending:    v.Get("order") == "asc",
	}
	if st := v.Get("status"); st != "" {
		for _, name := range strings.Split(st, ",") {
			status := journal.Status(strings.TrimSpace(name))
			if !status.Valid() {
				return q, fmt.Errorf("%w: status %q", journal.ErrInvalidInput, name)
			}
			q.Statuses = append(q.Statuses, status)
		}
	}
	for key, dst := range map[string]*int64{"from": &q.From, "to": &q.To} {
		if raw := v.Get(key); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return q, fmt.Errorf("%w: %s must be epoch millis", journal.ErrInvalidInput, key)
			}
			*dst = n
		}
	}
	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: limit", journal.ErrInvalidInput)
		}
		q.Limit = n
	}
	return q, nil
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q, err := entryQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries, err := s.journal.ListEntries(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var d journal.Draft
	if err := decodeBody(r, &d); err != nil {
		s.writeError(w, err)
		return
	}
	e, err := s.journal.CreateEntry(r.Context(), d)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.journal.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var p journal.Patch
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.journal.UpdateEntry(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.DeleteEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleExportEntries(w http.ResponseWriter, r *http.Request) {
	q, err := entryQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries, err := s.journal.ListEntries(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		var buf bytes.Buffer
		if err := journal.WriteCSV(&buf, entries); err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="journal.csv"`)
		_, _ = w.Write(buf.Bytes())
	case "org":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(journal.FormatEntriesOrg(entries)))
	default:
		s.writeError(w, fmt.Errorf("%w: format %q", journal.ErrInvalidInput, format))
	}
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	uri, err := s.journal.ReadImage(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"dataUri": uri})
}

// Instruments

type instrumentRequest struct {
	Name          string  `json:"name"`
	PointValueUSD float64 `json:"pointValueUSD"`
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListInstruments(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateInstrument(w http.ResponseWriter, r *http.Request) {
	var req instrumentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	inst, err := s.journal.CreateInstrument(r.Context(), req.Name, req.PointValueUSD)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) handleSeedInstruments(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.SeedInstruments(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: int64(n)})
}

func (s *Server) handleUpdateInstrument(w http.ResponseWriter, r *http.Request) {
	var p journal.InstrumentPatch
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.journal.UpdateInstrument(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleDeleteInstrument(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.DeleteInstrument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

// Accounts

type accountRequest struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	acc, err := s.journal.CreateAccount(r.Context(), req.Name, req.Balance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var p journal.AccountPatch
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.journal.UpdateAccount(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.DeleteAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

// Strategies

type strategyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListStrategies(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.journal.CreateStrategy(r.Context(), req.Name, req.Description)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var p journal.StrategyPatch
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	n, err := s.journal.UpdateStrategy(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.DeleteStrategy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, countBody{Count: n})
}

// Stats

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	rng, err := journal.RangeFor(v.Get("range"), s.now(), v.Get("from"), v.Get("to"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.journal.Stats(r.Context(), v.Get("accountId"), rng)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}
