package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/fairyhunter13/inventory-register-service/internal/invoice"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

func (a *App) listInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	status := invoice.Status(r.URL.Query().Get("status"))
	if status != "" && status != invoice.Pending && status != invoice.Paid {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "status must be pending or paid")
		return
	}
	ledger := a.Register.Invoices()
	writeJSON(w, http.StatusOK, map[string]any{
		"invoices":    ledger.List(status),
		"outstanding": ledger.Outstanding(),
	})
}

func (a *App) getInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	inv, err := a.Register.Invoices().Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (a *App) payInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	inv, err := a.Register.PayInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (a *App) activityHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	if q.Get("source") == "feed" {
		if a.Recorder.Feed == nil {
			WriteJSONError(w, http.StatusNotFound, "not_found", "activity feed not configured")
			return
		}
		recs, err := a.Recorder.Feed.Recent(r.Context(), limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"activity": recs})
		return
	}
	category := model.ActivityCategory(q.Get("category"))
	writeJSON(w, http.StatusOK, map[string]any{"activity": a.Recorder.Log.List(limit, category)})
}

func (a *App) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	inbox := a.Recorder.Inbox
	writeJSON(w, http.StatusOK, map[string]any{"notifications": inbox.List(), "unread": inbox.Unread()})
}

func (a *App) readNotificationHandler(w http.ResponseWriter, r *http.Request) {
	if !a.Recorder.Inbox.MarkRead(r.PathValue("id")) {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) readAllNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	a.Recorder.Inbox.MarkAllRead()
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	s := a.settings
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, s)
}

func (a *App) putSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName *string `json:"company_name"`
	}
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.CompanyName == nil || strings.TrimSpace(*req.CompanyName) == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "company_name is required")
		return
	}
	a.mu.Lock()
	a.settings.CompanyName = strings.TrimSpace(*req.CompanyName)
	s := a.settings
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, s)
}
