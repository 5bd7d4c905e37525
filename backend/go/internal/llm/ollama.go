package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"EchoChat/backend/go/internal/models"
)

// Ollama implements LLM against a local Ollama server.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates an Ollama client. An empty baseURL defaults to the local
// Ollama endpoint.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 300 * time.Second}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

func (o *Ollama) toMessages(req *models.GenerateContentRequest) []ollama.Message {
	var messages []ollama.Message
	if req.Instructions != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: req.Instructions})
	}
	for _, content := range req.Content {
		role := "assistant"
		if content.Role == models.SpeakerUser {
			role = "user"
		}
		messages = append(messages, ollama.Message{Role: role, Content: content.PlainText()})
	}
	return messages
}

// GenerateContent sends one turn to Ollama and returns the complete reply.
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	stream := false
	var reply string
	err := o.client.Chat(ctx, &ollama.ChatRequest{
		Model:    o.model,
		Messages: o.toMessages(req),
		Stream:   &stream,
	}, func(resp ollama.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat failed: %w", err)
	}

	return &models.GenerateContentResponse{
		Content: []models.Content{{
			Parts: []*models.Part{{Text: reply}},
			Role:  models.SpeakerModel,
		}},
	}, nil
}

// GenerateContentStream sends one turn to Ollama and streams reply chunks on
// the returned channel.
func (o *Ollama) GenerateContentStream(ctx context.Context, req *models.GenerateContentRequest) (<-chan *models.GenerateContentResponse, error) {
	stream := true
	ch := make(chan *models.GenerateContentResponse)

	go func() {
		defer close(ch)
		_ = o.client.Chat(ctx, &ollama.ChatRequest{
			Model:    o.model,
			Messages: o.toMessages(req),
			Stream:   &stream,
		}, func(resp ollama.ChatResponse) error {
			ch <- &models.GenerateContentResponse{
				Content: []models.Content{{
					Parts: []*models.Part{{Text: resp.Message.Content}},
					Role:  models.SpeakerModel,
				}},
			}
			return nil
		})
	}()

	return ch, nil
}
