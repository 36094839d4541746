package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/voice_agent/internal/config"
	"github.com/Vovarama1992/voice_agent/internal/domain"
	"github.com/Vovarama1992/voice_agent/internal/ports"
)

// сколько multipart держим в памяти, остальное уходит во временные файлы
const multipartMemory = 8 << 20

type VoicePipeline interface {
	Handle(ctx context.Context, req domain.VoiceRequest) (*domain.VoiceResult, error)
}

type VoiceHandler struct {
	pipeline  VoicePipeline
	maxUpload int64
	log       *logger.ZapLogger
}

func NewVoiceHandler(pipeline VoicePipeline, maxUpload int64, log *logger.ZapLogger) *VoiceHandler {
	return &VoiceHandler{
		pipeline:  pipeline,
		maxUpload: maxUpload,
		log:       log,
	}
}

// VoiceAgent handles POST /voice-agent (multipart: audio, language).
func (h *VoiceHandler) VoiceAgent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.log.Log(logger.LogEntry{Level: "warn", Message: "audio too large", Error: err})
			writeError(w, http.StatusBadRequest, "audio exceeds "+humanize.IBytes(uint64(h.maxUpload)))
			return
		}
		h.log.Log(logger.LogEntry{Level: "warn", Message: "invalid multipart", Error: err})
		writeError(w, http.StatusBadRequest, "invalid multipart: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	language := config.NormalizeLanguage(r.FormValue("language"))
	if language == "" {
		writeError(w, http.StatusBadRequest, "missing language")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "missing audio", Error: err})
		writeError(w, http.StatusBadRequest, "missing audio")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio")
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "voice request " + header.Filename + " (" + humanize.Bytes(uint64(len(data))) + ") lang=" + language,
	})

	res, err := h.pipeline.Handle(r.Context(), domain.VoiceRequest{
		Audio: ports.Audio{
			Data:        data,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		},
		Language: language,
	})
	if err != nil {
		status, msg := voiceErrorStatus(err)
		level := "error"
		if status < http.StatusInternalServerError {
			level = "warn"
		}
		h.log.Log(logger.LogEntry{Level: level, Message: "voice pipeline failed", Error: err})
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func voiceErrorStatus(err error) (int, string) {
	var stageErr *domain.StageError
	switch {
	case errors.Is(err, domain.ErrNoAudio), errors.Is(err, domain.ErrNoLanguage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &stageErr) && stageErr.Stage.Upstream():
		return http.StatusBadGateway, stageErr.Error()
	case errors.As(err, &stageErr):
		return http.StatusInternalServerError, string(stageErr.Stage) + " failed"
	}
	return http.StatusInternalServerError, "internal error"
}
