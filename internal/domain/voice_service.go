package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vovarama1992/voice_agent/internal/error_notificator"
	"github.com/Vovarama1992/voice_agent/internal/ports"
)

type Stage string

const (
	StageTranscribe Stage = "speech recognition"
	StageReply      Stage = "chat completion"
	StageSynthesize Stage = "speech synthesis"
	StageStore      Stage = "audio storage"
)

// Upstream reports whether the stage is served by a third-party API.
func (s Stage) Upstream() bool {
	return s != StageStore
}

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

var (
	ErrNoAudio         = errors.New("audio is required")
	ErrNoLanguage      = errors.New("language is required")
	ErrEmptyTranscript = errors.New("no speech recognized in audio")
)

type VoiceRequest struct {
	Audio    ports.Audio
	Language string
}

type VoiceResult struct {
	Transcript   string `json:"transcript"`
	ResponseText string `json:"response_text"`
	AudioURL     string `json:"tts_audio_url"`
}

// Speech is the recognition + synthesis pair, see speech.Service.
type Speech interface {
	Transcribe(ctx context.Context, audio ports.Audio, language string) (string, error)
	Synthesize(ctx context.Context, language, text string) (voiceID string, audio []byte, err error)
}

// верхняя граница на алерт, ответ клиенту не ждёт дольше
const notifyTimeout = 5 * time.Second

type VoiceService struct {
	speech   Speech
	llm      ports.LLMClient
	store    ports.AudioStore
	notifier error_notificator.Notificator
	newName  func() string
}

func NewVoiceService(
	speech Speech,
	llm ports.LLMClient,
	store ports.AudioStore,
	notifier error_notificator.Notificator,
) *VoiceService {
	if notifier == nil {
		notifier = error_notificator.Noop{}
	}
	return &VoiceService{
		speech:   speech,
		llm:      llm,
		store:    store,
		notifier: notifier,
		newName:  newAudioName,
	}
}

func newAudioName() string {
	return "generated_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".mp3"
}

// Handle runs recognition → completion → synthesis strictly in order. The
// first failing stage stops the chain.
func (s *VoiceService) Handle(ctx context.Context, req VoiceRequest) (*VoiceResult, error) {
	if len(req.Audio.Data) == 0 {
		return nil, ErrNoAudio
	}
	if req.Language == "" {
		return nil, ErrNoLanguage
	}

	start := time.Now()
	lang := req.Language
	log.Printf("[voice] >>> START lang=%s file=%q", lang, req.Audio.Filename)

	// 1) голос → текст
	transcript, err := s.speech.Transcribe(ctx, req.Audio, lang)
	if err != nil {
		return nil, s.fail(ctx, StageTranscribe, lang, err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		log.Printf("[voice] empty transcript lang=%s", lang)
		return nil, ErrEmptyTranscript
	}
	log.Printf("[voice] transcribed: %q", transcript)

	// 2) ответ модели
	reply, err := s.llm.Reply(ctx, transcript, lang)
	if err != nil {
		return nil, s.fail(ctx, StageReply, lang, err)
	}
	log.Printf("[voice] reply: %q", reply)

	// 3) ответ → голос
	voiceID, audio, err := s.speech.Synthesize(ctx, lang, reply)
	if err != nil {
		return nil, s.fail(ctx, StageSynthesize, lang, err)
	}

	url, err := s.store.Save(ctx, s.newName(), audio, "audio/mpeg")
	if err != nil {
		return nil, s.fail(ctx, StageStore, lang, err)
	}
	log.Printf("[voice] synthesized voice=%s bytes=%d -> %s", voiceID, len(audio), url)

	log.Printf("[voice] <<< DONE lang=%s in %s", lang, time.Since(start).Round(time.Millisecond))

	return &VoiceResult{
		Transcript:   transcript,
		ResponseText: reply,
		AudioURL:     url,
	}, nil
}

func (s *VoiceService) fail(ctx context.Context, stage Stage, lang string, err error) error {
	log.Printf("[voice] %s fail lang=%s err=%v", stage, lang, err)

	// клиент мог уйти, админа не дёргаем
	if ctx.Err() == nil {
		details := fmt.Sprintf("Stage: %s\nLanguage: %s", stage, lang)
		nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if nErr := s.notifier.Notify(nctx, err, details); nErr != nil {
			log.Printf("[voice] notify fail: %v", nErr)
		}
	}

	return &StageError{Stage: stage, Err: err}
}
