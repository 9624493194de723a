package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"catering/internal/logger"
	"catering/internal/recipes/providers"
)

// ErrUnparseable is returned when the model answers with something that is
// not a recipe.
var ErrUnparseable = errors.New("could not read a recipe from the model response")

// ErrEmptyPrompt is returned for blank requests
var ErrEmptyPrompt = errors.New("describe the dish you are looking for")

// UnparseableError carries the raw model output that failed to parse
type UnparseableError struct {
	Raw string
	Err error
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrUnparseable, e.Err)
}

func (e *UnparseableError) Is(target error) bool {
	return target == ErrUnparseable
}

func (e *UnparseableError) Unwrap() error {
	return e.Err
}

// Recipe is what the finder returns
type Recipe struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Servings    int      `json:"servings"`
	PrepTime    string   `json:"prep_time"`
	CookTime    string   `json:"cook_time"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

const systemPrompt = `You are a chef for an Indian catering kitchen. Answer with a single JSON object and nothing else, using exactly these keys:
{"name": string, "description": string, "servings": number, "prep_time": string, "cook_time": string, "ingredients": [string], "steps": [string]}
Quantities belong inside the ingredient strings.`

// Finder asks a language model for recipes
type Finder struct {
	provider providers.Provider
	log      *logger.Logger
}

// NewFinder creates a finder over provider
func NewFinder(provider providers.Provider, log *logger.Logger) *Finder {
	return &Finder{provider: provider, log: log}
}

// Find sends one request for the dish described by prompt. The call is not
// retried; an answer that does not parse yields an *UnparseableError.
func (f *Finder) Find(ctx context.Context, prompt string) (*Recipe, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	requestID := logger.RequestID(ctx)
	f.log.Debug(requestID, "recipe_lookup", fmt.Sprintf("asking %s for %q", f.provider.Name(), prompt))

	raw, err := f.provider.Complete(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: systemPrompt},
		{Role: providers.RoleUser, Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("recipe lookup failed: %w", err)
	}

	recipe, err := ParseRecipe(raw)
	if err != nil {
		f.log.Warn(requestID, "recipe_unparseable", err.Error())
		return nil, err
	}
	return recipe, nil
}

// ParseRecipe reads a recipe from model output, tolerating code fences and
// text around the JSON object.
func ParseRecipe(raw string) (*Recipe, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, &UnparseableError{Raw: raw, Err: errors.New("no JSON object in response")}
	}

	var recipe Recipe
	if err := json.Unmarshal([]byte(body), &recipe); err != nil {
		return nil, &UnparseableError{Raw: raw, Err: err}
	}

	recipe.Name = strings.TrimSpace(recipe.Name)
	if recipe.Name == "" {
		return nil, &UnparseableError{Raw: raw, Err: errors.New("recipe has no name")}
	}
	recipe.Ingredients = compact(recipe.Ingredients)
	recipe.Steps = compact(recipe.Steps)
	if len(recipe.Ingredients) == 0 {
		return nil, &UnparseableError{Raw: raw, Err: errors.New("recipe has no ingredients")}
	}
	return &recipe, nil
}

func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if end := strings.LastIndex(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
