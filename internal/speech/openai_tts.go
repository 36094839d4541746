package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAITTS озвучивает через /v1/audio/speech; voiceID — alloy, nova и т.д.
type OpenAITTS struct {
	client *openai.Client
}

func NewOpenAITTS(client *openai.Client) *OpenAITTS {
	return &OpenAITTS{client: client}
}

func (t *OpenAITTS) Synthesize(ctx context.Context, voiceID, text string) ([]byte, error) {
	resp, err := t.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voiceID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read openai speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai speech returned no audio")
	}
	return audio, nil
}
