package main

import (
	"testing"

	"catering/internal/config"
	"catering/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestInitFinder(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"}}
	assert.NotNil(t, initFinder(cfg, logger.Discard()))

	cfg.LLM.Provider = "ollama"
	assert.Nil(t, initFinder(cfg, logger.Discard()))

	cfg.LLM = config.LLMConfig{Provider: "openai"}
	assert.Nil(t, initFinder(cfg, logger.Discard()))
}
