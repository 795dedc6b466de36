package generator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/sharedcode/premortem"
)

const (
	GeminiProModel   = "gemini-3-pro-preview"
	GeminiFlashModel = "gemini-3-flash-preview"
	// ProThinkingBudget is the thinking budget used for the PRO tier when the caller sets none.
	ProThinkingBudget = 8192
)

// modelsAPI is the part of genai.Models used here.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// gemini implements premortem.Generator over the Google GenAI SDK.
type gemini struct {
	models     modelsAPI
	proModel   string
	flashModel string
}

func init() {
	Register("gemini", func(cfg map[string]any) (premortem.Generator, error) {
		apiKey := stringOpt(cfg, "api_key", os.Getenv("GEMINI_API_KEY"))
		if apiKey == "" {
			return nil, premortem.NewError(premortem.GenerationFailure, errors.New("gemini requires an api_key (or GEMINI_API_KEY)"), nil)
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		return newGemini(client.Models, cfg), nil
	})
}

func newGemini(models modelsAPI, cfg map[string]any) *gemini {
	return &gemini{
		models:     models,
		proModel:   stringOpt(cfg, "pro_model", stringOpt(cfg, "model", GeminiProModel)),
		flashModel: stringOpt(cfg, "flash_model", GeminiFlashModel),
	}
}

// Name returns the name of the generator.
func (g *gemini) Name() string { return "gemini" }

func (g *gemini) model(t premortem.Tier) string {
	if t == premortem.TierFlash {
		return g.flashModel
	}
	return g.proModel
}

func (g *gemini) config(opts premortem.GenOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokens),
		StopSequences:   opts.Stop,
	}
	if opts.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemInstruction, genai.RoleUser)
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.TopP > 0 {
		cfg.TopP = genai.Ptr(opts.TopP)
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = AnalysisSchema()
	}
	budget := opts.ThinkingBudget
	if budget == 0 && opts.Tier != premortem.TierFlash && opts.JSON {
		budget = ProThinkingBudget
	}
	if budget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(budget))}
	}
	return cfg
}

// Generate sends prompt to the model picked by opts.Tier (PRO unless FLASH is asked for).
func (g *gemini) Generate(ctx context.Context, prompt string, opts premortem.GenOptions) (premortem.GenOutput, error) {
	model := g.model(opts.Tier)
	resp, err := g.models.GenerateContent(ctx, model, genai.Text(prompt), g.config(opts))
	if err != nil {
		return premortem.GenOutput{}, fmt.Errorf("gemini %s request failed: %w", model, err)
	}
	out := premortem.GenOutput{Text: resp.Text(), Raw: resp}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}

// EstimateCost estimates the cost of the generation based on token usage.
func (g *gemini) EstimateCost(inTokens, outTokens int) float64 {
	// Placeholder pricing
	return float64(inTokens)*0.0001 + float64(outTokens)*0.0002
}
