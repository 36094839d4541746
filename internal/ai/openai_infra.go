package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/voice_agent/internal/ports"
	openai "github.com/sashabaranov/go-openai"
)

const maxReplyTokens = 500

type OpenAIOptions struct {
	APIKey       string
	BaseURL      string // пусто → api.openai.com
	Model        string
	Brand        string
	SystemPrompt string // полностью заменяет промпт бренда
}

type OpenAIClient struct {
	client       *openai.Client
	model        string
	brand        string
	systemPrompt string
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	model := opts.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		brand:        opts.Brand,
		systemPrompt: opts.SystemPrompt,
	}
}

// Raw exposes the underlying client for the OpenAI speech provider.
func (c *OpenAIClient) Raw() *openai.Client {
	return c.client
}

// Transcribe sends the clip to whisper-1.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio ports.Audio, language string) (string, error) {
	name := audio.Filename
	if name == "" {
		name = "audio.wav"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: name,
		Reader:   bytes.NewReader(audio.Data),
		Language: WhisperLanguage(language),
	})
	if err != nil {
		return "", fmt.Errorf("whisper: %s: %w", DescribeError(err), err)
	}

	log.Printf("[ai] whisper lang=%s chars=%d", language, len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}

func (c *OpenAIClient) Reply(ctx context.Context, transcript, language string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: c.prompt(language)},
		{Role: openai.ChatMessageRoleUser, Content: "User said (transcript): " + transcript},
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxReplyTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %s: %w", DescribeError(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("chat completion: empty reply")
	}
	return reply, nil
}

func (c *OpenAIClient) prompt(language string) string {
	if c.systemPrompt != "" {
		return c.systemPrompt
	}
	return fmt.Sprintf("You are a helpful voice assistant for %s. "+
		"Always reply in the same language as the user. If the user language is '%s', "+
		"respond in that language. Keep responses concise and professional.", c.brand, language)
}

// WhisperLanguage reduces a tag like "es-mx" to the ISO-639-1 code whisper
// accepts. Anything else is dropped and whisper autodetects.
func WhisperLanguage(language string) string {
	primary, _, _ := strings.Cut(language, "-")
	if len(primary) != 2 {
		return ""
	}
	return primary
}

// диагностика ошибок OpenAI
func DescribeError(err error) string {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusUnauthorized:
		return "invalid OpenAI API key: " + apiErr.Message
	case http.StatusNotFound:
		return "model not found: " + apiErr.Message
	case http.StatusTooManyRequests:
		return "OpenAI quota or rate limit exceeded: " + apiErr.Message
	case http.StatusBadRequest:
		return "bad request to OpenAI: " + apiErr.Message
	}
	if apiErr.HTTPStatusCode >= 500 {
		return "OpenAI internal error: " + apiErr.Message
	}
	return err.Error()
}
