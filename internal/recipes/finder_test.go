package recipes

import (
	"context"
	"errors"
	"testing"

	"catering/internal/logger"
	"catering/internal/recipes/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// fakeModel answers every request with a canned response
type fakeModel struct {
	response string
	err      error
	calls    int
	lastMsgs []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.lastMsgs = messages
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func newFinder(model *fakeModel) *Finder {
	provider := providers.NewLangChainProvider("fake", model, "fake-model")
	return NewFinder(provider, logger.Discard())
}

const biryaniJSON = `{"name": "Hyderabadi Chicken Biryani", "description": "Layered rice and chicken",
"servings": 40, "prep_time": "1 hour", "cook_time": "2 hours",
"ingredients": ["10 kg basmati rice", " ", "8 kg chicken"], "steps": ["Marinate", "Layer", "Dum cook"]}`

func TestFindParsesFencedJSON(t *testing.T) {
	model := &fakeModel{response: "Here you go!\n```json\n" + biryaniJSON + "\n```\nEnjoy."}
	finder := newFinder(model)

	recipe, err := finder.Find(context.Background(), "biryani for forty")
	require.NoError(t, err)
	assert.Equal(t, "Hyderabadi Chicken Biryani", recipe.Name)
	assert.Equal(t, 40, recipe.Servings)
	assert.Equal(t, []string{"10 kg basmati rice", "8 kg chicken"}, recipe.Ingredients)
	assert.Len(t, recipe.Steps, 3)

	require.Len(t, model.lastMsgs, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, model.lastMsgs[0].Role)
	assert.Equal(t, schema.ChatMessageTypeHuman, model.lastMsgs[1].Role)
}

func TestFindDoesNotRetryUnparseable(t *testing.T) {
	model := &fakeModel{response: "I'm sorry, I can only talk about desserts."}
	finder := newFinder(model)

	_, err := finder.Find(context.Background(), "goat curry")
	assert.ErrorIs(t, err, ErrUnparseable)
	assert.Equal(t, 1, model.calls)

	var unparseable *UnparseableError
	require.True(t, errors.As(err, &unparseable))
	assert.Contains(t, unparseable.Raw, "desserts")
}

func TestFindSurfacesProviderErrors(t *testing.T) {
	model := &fakeModel{err: errors.New("429 rate limited")}
	finder := newFinder(model)

	_, err := finder.Find(context.Background(), "samosa")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnparseable)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFindRejectsEmptyPrompt(t *testing.T) {
	model := &fakeModel{}
	_, err := newFinder(model).Find(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, model.calls)
}

func TestParseRecipe(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"bare object", biryaniJSON, false},
		{"missing name", `{"ingredients": ["rice"]}`, true},
		{"no ingredients", `{"name": "Air", "ingredients": []}`, true},
		{"broken json", `{"name": "Dal",`, true},
		{"no object", "just text", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecipe(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnparseable)
				return
			}
			assert.NoError(t, err)
		})
	}
}
