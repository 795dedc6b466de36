package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sharedcode/premortem"
)

// ollama implements the Generator interface for local Ollama models.
type ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func init() {
	Register("ollama", func(cfg map[string]any) (premortem.Generator, error) {
		return &ollama{
			baseURL: strings.TrimRight(stringOpt(cfg, "base_url", "http://localhost:11434"), "/"),
			model:   stringOpt(cfg, "model", "llama3"),
			client:  http.DefaultClient,
		}, nil
	})
}

// Name returns the name of the generator.
func (g *ollama) Name() string { return "ollama" }

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Generate sends a prompt to the Ollama API and returns the generated text.
// Tier and thinking budget do not apply to local models.
func (g *ollama) Generate(ctx context.Context, prompt string, opts premortem.GenOptions) (premortem.GenOutput, error) {
	reqBody := ollamaRequest{
		Model:  g.model,
		Prompt: prompt,
		System: opts.SystemInstruction,
	}
	if opts.JSON {
		reqBody.Format = "json"
	}
	o := map[string]any{}
	if opts.Temperature > 0 {
		o["temperature"] = opts.Temperature
	}
	if opts.TopP > 0 {
		o["top_p"] = opts.TopP
	}
	if opts.MaxTokens > 0 {
		o["num_predict"] = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		o["stop"] = opts.Stop
	}
	if len(o) > 0 {
		reqBody.Options = o
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return premortem.GenOutput{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return premortem.GenOutput{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return premortem.GenOutput{}, fmt.Errorf("ollama api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return premortem.GenOutput{}, premortem.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return premortem.GenOutput{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return premortem.GenOutput{
		Text:       ollamaResp.Response,
		TokensUsed: ollamaResp.PromptEvalCount + ollamaResp.EvalCount,
	}, nil
}

// EstimateCost estimates the cost of the generation. For local models, this is typically zero.
func (g *ollama) EstimateCost(inTokens, outTokens int) float64 {
	return 0
}
