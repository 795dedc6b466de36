package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sharedcode/premortem"
)

func TestRegistry(t *testing.T) {
	assert.Subset(t, Names(), []string{"gemini", "mock", "ollama"})

	_, err := New("nope", nil)
	assert.Error(t, err)

	g, err := New("mock", nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", g.Name())
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := New("gemini", map[string]any{})
	assert.True(t, premortem.IsGenerationFailure(err))
}

type fakeModels struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	f.config = config
	return f.resp, f.err
}

func textResponse(s string, tokens int32) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates:    []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: tokens},
	}
}

func TestGeminiProTier(t *testing.T) {
	fm := &fakeModels{resp: textResponse(`{"ok":true}`, 42)}
	g := newGemini(fm, nil)

	out, err := g.Generate(context.Background(), "PROJECT_ID: x", premortem.GenOptions{
		JSON: true, Tier: premortem.TierPro, SystemInstruction: "Principal SRE",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out.Text)
	assert.Equal(t, 42, out.TokensUsed)

	assert.Equal(t, GeminiProModel, fm.model)
	assert.Equal(t, "PROJECT_ID: x", fm.prompt)
	assert.Equal(t, "application/json", fm.config.ResponseMIMEType)
	assert.Same(t, AnalysisSchema(), fm.config.ResponseSchema)
	require.NotNil(t, fm.config.ThinkingConfig)
	assert.Equal(t, int32(ProThinkingBudget), *fm.config.ThinkingConfig.ThinkingBudget)
	assert.Equal(t, "Principal SRE", fm.config.SystemInstruction.Parts[0].Text)
}

func TestGeminiFlashTier(t *testing.T) {
	fm := &fakeModels{resp: textResponse("briefing", 0)}
	g := newGemini(fm, map[string]any{"flash_model": "flash-x"})

	_, err := g.Generate(context.Background(), "p", premortem.GenOptions{JSON: true, Tier: premortem.TierFlash, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "flash-x", fm.model)
	assert.Nil(t, fm.config.ThinkingConfig)
	assert.Equal(t, float32(0.3), *fm.config.Temperature)
}

func TestGeminiError(t *testing.T) {
	fm := &fakeModels{err: errors.New("quota")}
	_, err := newGemini(fm, nil).Generate(context.Background(), "p", premortem.GenOptions{})
	assert.ErrorContains(t, err, "quota")
}

func TestAnalysisSchema(t *testing.T) {
	s := AnalysisSchema()
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Contains(t, s.Required, "scenarios")
	assert.Contains(t, s.Required, "forensicVerdict")

	sc := s.Properties["scenarios"]
	require.NotNil(t, sc)
	assert.Equal(t, genai.TypeArray, sc.Type)
	item := sc.Items
	assert.Contains(t, item.Required, "minimalPreventiveChange")
	assert.NotContains(t, item.Properties, "authoritativeLookup")
	assert.Equal(t, genai.TypeNumber, item.Properties["minimalPreventiveChange"].Properties["likelihood"].Type)
	assert.Equal(t, genai.TypeBoolean, item.Properties["observabilitySignals"].Items.Properties["isCoveredBySLO"].Type)
	assert.Equal(t, genai.TypeString, item.Properties["severity"].Type)
}

func TestMockProducesDecodableAnalysis(t *testing.T) {
	g, err := New("mock", nil)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "p", premortem.GenOptions{JSON: true})
	require.NoError(t, err)

	a, err := premortem.DecodeAnalysis(out.Text)
	require.NoError(t, err)
	assert.Len(t, a.Scenarios, 3)

	m := g.(*Mock)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, "p", m.LastPrompt())
}

func TestMockOverrides(t *testing.T) {
	g, err := New("mock", map[string]any{"error": "boom"})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p", premortem.GenOptions{})
	assert.EqualError(t, err, "boom")

	m := &Mock{Response: "fixed"}
	out, err := m.Generate(context.Background(), "p", premortem.GenOptions{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.Text)
}

func TestOllama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req.Format)
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, "llama3", req.Model)
		json.NewEncoder(w).Encode(ollamaResponse{Response: "{}", Done: true, PromptEvalCount: 3, EvalCount: 4})
	}))
	defer srv.Close()

	g, err := New("ollama", map[string]any{"base_url": srv.URL})
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), "p", premortem.GenOptions{JSON: true, SystemInstruction: "sys"})
	require.NoError(t, err)
	assert.Equal(t, "{}", out.Text)
	assert.Equal(t, 7, out.TokensUsed)
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g, err := New("ollama", map[string]any{"base_url": srv.URL})
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "p", premortem.GenOptions{})
	var se premortem.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}
