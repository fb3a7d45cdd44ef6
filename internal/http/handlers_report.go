package http

import (
	"net/http"
	"time"

	"sardinha/internal/backup"
	"sardinha/internal/core"
	applog "sardinha/internal/log"
)

// handleMonthReport serves GET /api/report?profile=<name>&month=YYYY-MM,
// defaulting to the current month.
func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	profile := r.URL.Query().Get("profile")
	if profile == "" {
		writeError(w, r, core.ErrEmptyProfileName)
		return
	}
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	detail, err := s.svc.ProfileByName(r.Context(), profile)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.svc.MonthExpenses(r.Context(), profile, month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	income := 0.0
	if detail.Income != nil {
		income = *detail.Income
	}
	report := core.BuildMonthReport(income, detail.Categories, expenses, month)
	writeJSON(w, http.StatusOK, report)
}

type offlineState struct {
	Offline bool `json:"offline"`
}

func (s *Server) handleGetOffline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, offlineState{Offline: s.svc.Offline()})
}

func (s *Server) handleSetOffline(w http.ResponseWriter, r *http.Request) {
	var req offlineState
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, errBadRequest)
		return
	}

	var err error
	if req.Offline {
		err = s.svc.GoOffline(r.Context())
	} else {
		err = s.svc.GoOnline(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Data mode switched",
		applog.FieldOffline, req.Offline)
	writeJSON(w, http.StatusOK, offlineState{Offline: s.svc.Offline()})
}

// handleExportBackup serves GET /api/backup?current=<profile name>.
func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Export(r.Context(), s.svc, r.URL.Query().Get("current"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="sardinha-backup.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleImportBackup(w http.ResponseWriter, r *http.Request) {
	var doc backup.Document
	if err := decodeBody(w, r, &doc); err != nil {
		writeError(w, r, errBadRequest)
		return
	}
	if err := backup.Import(r.Context(), s.svc, doc); err != nil {
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Backup imported",
		"profiles", len(doc.Profiles))
	w.WriteHeader(http.StatusNoContent)
}
