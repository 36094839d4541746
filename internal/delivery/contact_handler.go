package delivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/voice_agent/internal/domain"
)

type ContactSubmitter interface {
	Submit(ctx context.Context, in domain.ContactInput) (int64, error)
}

type ContactHandler struct {
	contacts ContactSubmitter
	log      *logger.ZapLogger
}

func NewContactHandler(contacts ContactSubmitter, log *logger.ZapLogger) *ContactHandler {
	return &ContactHandler{contacts: contacts, log: log}
}

// Submit handles POST /contact (form or multipart).
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	_, err := h.contacts.Submit(r.Context(), domain.ContactInput{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Plan:    r.FormValue("plan"),
		Message: r.FormValue("message"),
	})
	if errors.Is(err, domain.ErrInvalidContact) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "failed to save contact", Error: err})
		writeError(w, http.StatusInternalServerError, "failed to save submission")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "detail": "Submission received"})
}
