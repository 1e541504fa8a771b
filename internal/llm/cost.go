package llm

// modelPricing holds per-model pricing in USD per 1M tokens.
type modelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// priceTable maps model identifiers to their pricing. Local (ollama) models
// are free and not listed.
var priceTable = map[string]modelPricing{
	// Anthropic models
	"claude-sonnet-4-5-20250929": {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-sonnet-4-20250514":   {InputPerMillion: 3.00, OutputPerMillion: 15.00},
	"claude-haiku-4-5-20251001":  {InputPerMillion: 0.80, OutputPerMillion: 4.00},

	// OpenAI models
	"gpt-4o":       {InputPerMillion: 2.50, OutputPerMillion: 10.00},
	"gpt-4o-mini":  {InputPerMillion: 0.15, OutputPerMillion: 0.60},
	"gpt-4.1":      {InputPerMillion: 2.00, OutputPerMillion: 8.00},
	"gpt-4.1-mini": {InputPerMillion: 0.40, OutputPerMillion: 1.60},
}

// EstimateCost returns the estimated cost in USD for the given model and token counts.
// Returns 0 if the model is not found in the price table.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := priceTable[model]
	if !ok {
		return 0
	}

	inputCost := float64(inputTokens) / 1_000_000.0 * pricing.InputPerMillion
	outputCost := float64(outputTokens) / 1_000_000.0 * pricing.OutputPerMillion
	return inputCost + outputCost
}

// EstimateTokens provides a rough token count estimation for the given text.
// Uses the approximation of 1 token per 4 characters.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n == 0 && len(text) > 0 {
		return 1
	}
	return n
}

// Estimate is a pre-flight token and cost estimate for one request.
type Estimate struct {
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64
	KnownPrice   bool
}

// EstimateRequest estimates req, assuming the model uses its full output
// budget (MaxTokens, or the provider default).
func EstimateRequest(req CompletionRequest) Estimate {
	var input int
	for _, m := range req.Messages {
		input += EstimateTokens(m.Content)
	}
	output := req.MaxTokens
	if output == 0 {
		output = defaultMaxTokens
	}
	_, known := priceTable[req.Model]
	return Estimate{
		Model:        req.Model,
		InputTokens:  input,
		OutputTokens: output,
		Cost:         EstimateCost(req.Model, input, output),
		KnownPrice:   known,
	}
}
