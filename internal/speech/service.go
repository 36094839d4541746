package speech

import (
	"context"

	"github.com/Vovarama1992/voice_agent/internal/ports"
)

// === Единый сервис (и для стт и для ттс) ===

type Service struct {
	stt    ports.STTClient
	tts    ports.TTSClient
	voices *Voices
}

func NewService(stt ports.STTClient, tts ports.TTSClient, voices *Voices) *Service {
	return &Service{
		stt:    stt,
		tts:    tts,
		voices: voices,
	}
}

func (s *Service) Transcribe(ctx context.Context, audio ports.Audio, language string) (string, error) {
	return s.stt.Transcribe(ctx, audio, language)
}

// Synthesize picks the voice for language and returns it with the mp3 bytes.
func (s *Service) Synthesize(ctx context.Context, language, text string) (string, []byte, error) {
	voiceID := s.voices.Choose(language)
	audio, err := s.tts.Synthesize(ctx, voiceID, text)
	if err != nil {
		return voiceID, nil, err
	}
	return voiceID, audio, nil
}
