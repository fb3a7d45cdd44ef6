package http

import (
	"net/http"

	"sardinha/internal/core"
	applog "sardinha/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.svc.ListExpenses(r.Context(), r.PathValue("profileID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// handleMonthExpenses serves GET /api/expenses?profile=<name>&month=YYYY-MM.
func (s *Server) handleMonthExpenses(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")
	month := r.URL.Query().Get("month")
	if profile == "" {
		writeError(w, r, core.ErrEmptyProfileName)
		return
	}
	// Expenses are filtered on the exact month bucket, so a missing or
	// malformed month would match nothing and read as an empty dataset.
	if err := core.ValidateMonth(month); err != nil {
		writeError(w, r, err)
		return
	}

	expenses, err := s.svc.MonthExpenses(r.Context(), profile, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req core.Expense
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}
	req.Description = sanitizeInput(req.Description)
	if err := req.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.svc.AddExpense(r.Context(), r.PathValue("profileID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense recorded",
		applog.FieldExpenseID, created.ID,
		applog.FieldCategory, created.Category,
		applog.FieldMonth, created.Month())
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var patch core.ExpensePatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, r, errBadRequest)
		return
	}
	if patch.Description != nil {
		clean := sanitizeInput(*patch.Description)
		patch.Description = &clean
	}

	updated, err := s.svc.UpdateExpense(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
