package llm

import (
	"context"
	"fmt"
	"io"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// Transcriber converts audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// WhisperTranscriber implements Transcriber with the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
}

// NewWhisperTranscriber creates a Whisper client.
func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	config := openai.DefaultConfig(apiKey)
	return &WhisperTranscriber{client: openai.NewClientWithConfig(config)}
}

// Transcribe sends the audio to Whisper and returns the transcript. filename
// must carry the real extension; the API uses it to detect the format.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}
