package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// minOllamaContext is the smallest context window requested from Ollama.
// Its server default is small enough to cut off a prompt carrying several
// knowledge items, silently dropping the ticket at the end.
const minOllamaContext = 8192

// OllamaProvider calls a local Ollama server's chat endpoint.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	Model           string        `json:"model"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

// contextWindow sizes num_ctx to hold the estimated prompt plus the output budget.
func contextWindow(msgs []Message, maxTokens int) int {
	n := maxTokens
	for _, m := range msgs {
		n += EstimateTokens(m.Content)
	}
	if n < minOllamaContext {
		return minOllamaContext
	}
	return n
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	messages := make([]ollamaMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = ollamaMessage{Role: string(m.Role), Content: m.Content}
	}

	var resp ollamaChatResponse
	err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/api/chat", nil, ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  maxTokens,
			NumCtx:      contextWindow(req.Messages, maxTokens),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", resp.Error)
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return nil, fmt.Errorf("ollama returned no content (done reason %q)", resp.DoneReason)
	}

	return &CompletionResponse{
		Content:      resp.Message.Content,
		InputTokens:  resp.PromptEvalCount,
		OutputTokens: resp.EvalCount,
		Model:        resp.Model,
		FinishReason: resp.DoneReason,
	}, nil
}
