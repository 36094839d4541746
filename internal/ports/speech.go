package ports

import "context"

// Audio is an uploaded clip as received from the client.
type Audio struct {
	Data        []byte
	Filename    string
	ContentType string
}

// голос → текст
type STTClient interface {
	Transcribe(ctx context.Context, audio Audio, language string) (string, error)
}

// текст → голос
type TTSClient interface {
	Synthesize(ctx context.Context, voiceID, text string) ([]byte, error)
}

type LLMClient interface {
	Reply(ctx context.Context, transcript, language string) (string, error)
}
