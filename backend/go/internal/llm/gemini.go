package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"EchoChat/backend/go/internal/models"
)

// Gemini implements LLM on top of the Google GenAI API.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a Gemini client for the named model.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, modelName: model}, nil
}

// session builds a fresh model and chat session for one request. Models are
// configured per request because the system instructions differ per turn.
func (g *Gemini) session(req *models.GenerateContentRequest) (*genai.ChatSession, []genai.Part, error) {
	if len(req.Content) == 0 {
		return nil, nil, fmt.Errorf("empty content")
	}

	model := g.client.GenerativeModel(g.modelName)
	if req.Instructions != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.Instructions)},
		}
	}

	cs := model.StartChat()
	history := req.Content[:len(req.Content)-1]
	for _, c := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  toGenaiRole(c.Role),
			Parts: toGenaiParts(c),
		})
	}

	last := req.Content[len(req.Content)-1]
	return cs, toGenaiParts(last), nil
}

// GenerateContent sends one turn to Gemini and returns the reply.
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	cs, parts, err := g.session(req)
	if err != nil {
		return nil, err
	}

	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return fromGenaiResponse(resp), nil
}

// GenerateContentStream sends one turn to Gemini and streams reply chunks on
// the returned channel.
func (g *Gemini) GenerateContentStream(ctx context.Context, req *models.GenerateContentRequest) (<-chan *models.GenerateContentResponse, error) {
	cs, parts, err := g.session(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan *models.GenerateContentResponse)
	iter := cs.SendMessageStream(ctx, parts...)

	go func() {
		defer close(ch)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				return
			}
			ch <- fromGenaiResponse(resp)
		}
	}()

	return ch, nil
}

// toGenaiRole maps internal speaker roles to the two roles Gemini accepts.
func toGenaiRole(role models.SpeakerRole) string {
	switch role {
	case models.SpeakerUser:
		return "user"
	default:
		return "model"
	}
}

func toGenaiParts(content models.Content) []genai.Part {
	var parts []genai.Part
	for _, p := range content.Parts {
		switch {
		case p.Text != "":
			parts = append(parts, genai.Text(p.Text))
		case p.InlineData != nil:
			parts = append(parts, genai.Blob{
				MIMEType: p.InlineData.MIMEType,
				Data:     p.InlineData.Data,
			})
		case p.FileData != nil && p.FileData.ExtractedText != "":
			// Objects in private storage are not reachable by the API, so the
			// extracted text stands in for the file itself.
			parts = append(parts, genai.Text(p.FileData.ExtractedText))
		}
	}
	return parts
}

func fromGenaiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	if resp == nil {
		return nil
	}
	var content []models.Content
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			content = append(content, fromGenaiContent(cand.Content))
		}
	}
	return &models.GenerateContentResponse{Content: content}
}

func fromGenaiContent(content *genai.Content) models.Content {
	var parts []*models.Part
	for _, p := range content.Parts {
		switch v := p.(type) {
		case genai.Text:
			parts = append(parts, &models.Part{Text: string(v)})
		case genai.Blob:
			parts = append(parts, &models.Part{
				InlineData: &models.Blob{MIMEType: v.MIMEType, Data: v.Data},
			})
		default:
			parts = append(parts, &models.Part{Text: fmt.Sprintf("%v", v)})
		}
	}
	return models.Content{
		Parts: parts,
		Role:  models.SpeakerRole(content.Role),
	}
}
