package models

// Generation use cases.
const (
	UseCasePlan     = "plan"
	UseCaseResearch = "research"
	UseCaseMindmap  = "mindmap"
	UseCasePodcast  = "podcast"
	UseCaseChat     = "chat"
)

// Supported provider identifiers.
const (
	ModelOpenAI    = "openai"
	ModelAnthropic = "anthropic"
	ModelGemini    = "gemini"
)

// GenerationRequest is the ephemeral value handed to the content
// generation gateway: which use case, which provider, and a snapshot
// of the target space. History carries the transcript for chat turns.
type GenerationRequest struct {
	UseCase string        `json:"useCase"`
	Model   string        `json:"model"`
	Space   Space         `json:"space"`
	Message string        `json:"message,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
}

// GenerationResponse is the wire shape of POST /api/ai/generate.
type GenerationResponse struct {
	Content string `json:"content"`
}

// ValidUseCase reports whether u is a known generation use case.
func ValidUseCase(u string) bool {
	switch u {
	case UseCasePlan, UseCaseResearch, UseCaseMindmap, UseCasePodcast, UseCaseChat:
		return true
	}
	return false
}

// ValidModel reports whether m is a supported provider identifier.
func ValidModel(m string) bool {
	switch m {
	case ModelOpenAI, ModelAnthropic, ModelGemini:
		return true
	}
	return false
}
