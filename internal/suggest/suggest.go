// Package suggest picks a category for a transaction note using Gemini.
// The model sees the user's own category names and must answer with one
// of them, or NONE when nothing fits.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"pocketledger/internal/domain"
)

// ErrNoSuggestion is returned when the model declines to pick a
// category or answers with a name the user does not have.
var ErrNoSuggestion = fmt.Errorf("no category suggestion")

// Generator is the model call the suggester depends on. Tests
// substitute a canned function.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Suggester struct {
	gen   Generator
	model string
}

func New(ctx context.Context, model string) (*Suggester, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: create genai client: %w", err)
	}
	return &Suggester{gen: client.Models, model: model}, nil
}

// SuggestCategory returns the category whose name the model picks for
// the note.
func (s *Suggester) SuggestCategory(ctx context.Context, note string, cats []domain.Category) (domain.Category, error) {
	if strings.TrimSpace(note) == "" || len(cats) == 0 {
		return domain.Category{}, ErrNoSuggestion
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildPrompt(note, cats)},
			},
		},
	}

	resp, err := s.gen.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return domain.Category{}, fmt.Errorf("suggest: generate content: %w", err)
	}

	answer := cleanAnswer(resp.Text())
	if answer == "" || answer == "NONE" {
		return domain.Category{}, ErrNoSuggestion
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, answer) {
			return c, nil
		}
	}
	return domain.Category{}, ErrNoSuggestion
}

func buildPrompt(note string, cats []domain.Category) string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}

	return "You are a personal finance assistant.\n\n" +
		"Task:\n" +
		"- Pick the single best matching category for the expense note below.\n" +
		"- Answer with EXACTLY one category name from the list, nothing else.\n" +
		"- If no category fits, answer NONE.\n\n" +
		"Categories:\n- " + strings.Join(names, "\n- ") + "\n\n" +
		"Note: " + strings.TrimSpace(note) + "\n"
}

// cleanAnswer strips Markdown fences and quotes in case the model
// ignores the plain-text instruction.
func cleanAnswer(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	s = strings.Trim(s, "\"'` \n\t")
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
