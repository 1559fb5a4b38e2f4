package entity

import "errors"

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
)

var (
	ErrMissingAPIKey       = errors.New("OPENAI_API_KEY environment variable not set")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)
