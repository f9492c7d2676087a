// Package gemini provides a Generator implementation for the Google Gemini
// generateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/germanamz/nmapsum/pkg/chats/content"
	"github.com/germanamz/nmapsum/pkg/chats/message"
	"github.com/germanamz/nmapsum/pkg/modeladapter"
	"github.com/germanamz/nmapsum/pkg/modeladapter/usage"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint (no trailing slash).
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model every request is sent to unless configured otherwise.
	DefaultModel = "gemini-pro"
)

// ErrEmptyResponse is returned when the API answers without any candidate.
var ErrEmptyResponse = errors.New("empty candidates in response")

// HarmCategory names a content-safety category.
type HarmCategory string

const (
	HarmCategoryHarassment       HarmCategory = "HARM_CATEGORY_HARASSMENT"
	HarmCategoryHateSpeech       HarmCategory = "HARM_CATEGORY_HATE_SPEECH"
	HarmCategorySexuallyExplicit HarmCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	HarmCategoryDangerousContent HarmCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// BlockThreshold is the probability level at and above which content is blocked.
type BlockThreshold string

const BlockMediumAndAbove BlockThreshold = "BLOCK_MEDIUM_AND_ABOVE"

// SafetySetting pairs a harm category with its block threshold.
type SafetySetting struct {
	Category  HarmCategory   `json:"category"`
	Threshold BlockThreshold `json:"threshold"`
}

// GenerationConfig holds the sampling parameters of a request.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the fixed sampling parameters.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.9,
		TopK:            1,
		TopP:            1,
		MaxOutputTokens: 2048,
	}
}

// DefaultSafetySettings returns the fixed safety table: every category
// blocks medium probability and above.
func DefaultSafetySettings() []SafetySetting {
	return []SafetySetting{
		{Category: HarmCategoryHarassment, Threshold: BlockMediumAndAbove},
		{Category: HarmCategoryHateSpeech, Threshold: BlockMediumAndAbove},
		{Category: HarmCategorySexuallyExplicit, Threshold: BlockMediumAndAbove},
		{Category: HarmCategoryDangerousContent, Threshold: BlockMediumAndAbove},
	}
}

// Adapter talks to the Gemini API with a single key and model.
type Adapter struct {
	modeladapter.ModelAdapter

	Generation GenerationConfig
	Safety     []SafetySetting
}

// New creates an Adapter configured for the Gemini API.
// The baseURL should be "https://generativelanguage.googleapis.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{
		Generation: DefaultGenerationConfig(),
		Safety:     DefaultSafetySettings(),
	}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-goog-api-key",
	}
	a.Name = model

	return a
}

// Complete sends msg as the sole user content and returns the text of the
// first candidate.
func (a *Adapter) Complete(ctx context.Context, msg message.Message) (string, error) {
	req := a.buildRequest(msg)
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", a.Name)

	var resp apiResponse
	if err := a.PostJSON(ctx, path, req, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	})

	if len(resp.Candidates) == 0 {
		if reason := resp.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", reason)
		}
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	cand := resp.Candidates[0]
	text := candidateText(cand)
	if text == "" && blockedFinish(cand.FinishReason) {
		return "", fmt.Errorf("gemini: response blocked: %s", cand.FinishReason)
	}

	return text, nil
}

// --- request types ---

type apiRequest struct {
	Contents         []apiContent     `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings,omitempty"`
}

type apiContent struct {
	Role  string    `json:"role"`
	Parts []apiPart `json:"parts"`
}

type apiPart struct {
	Text string `json:"text,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Candidates     []apiCandidate    `json:"candidates"`
	PromptFeedback apiPromptFeedback `json:"promptFeedback"`
	UsageMetadata  apiUsageMeta      `json:"usageMetadata"`
}

type apiCandidate struct {
	Content      apiContent `json:"content"`
	FinishReason string     `json:"finishReason"`
}

type apiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type apiUsageMeta struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(msg message.Message) apiRequest {
	var parts []apiPart
	for _, p := range msg.Parts {
		if t, ok := p.(content.Text); ok {
			parts = append(parts, apiPart{Text: t.Text})
		}
	}
	// Gemini rejects a content entry without parts.
	if len(parts) == 0 {
		parts = []apiPart{{Text: ""}}
	}

	return apiRequest{
		Contents:         []apiContent{{Role: "user", Parts: parts}},
		GenerationConfig: a.Generation,
		SafetySettings:   a.Safety,
	}
}

func candidateText(cand apiCandidate) string {
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func blockedFinish(reason string) bool {
	switch reason {
	case "SAFETY", "RECITATION", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return true
	}
	return false
}

// --- Generator ---

var (
	_ modeladapter.Generator     = (*Client)(nil)
	_ modeladapter.UsageReporter = (*Client)(nil)
)

// Client is a modeladapter.Generator that builds a fresh Adapter for every
// call, so the key used is always the one supplied by the caller.
type Client struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client // nil falls back to http.DefaultClient

	usage usage.Tracker
}

// NewClient returns a Client for the given endpoint and model. Empty values
// fall back to DefaultBaseURL and DefaultModel.
func NewClient(baseURL, model string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: hc,
	}
}

// Generate issues one generateContent request with apiKey.
func (c *Client) Generate(ctx context.Context, apiKey string, msg message.Message) (string, error) {
	a := New(c.BaseURL, apiKey, c.Model)
	a.Client = c.HTTPClient

	text, err := a.Complete(ctx, msg)
	if last, ok := a.Usage.Last(); ok {
		c.usage.Add(last)
	}

	return text, err
}

// UsageTracker returns token usage aggregated across every call.
func (c *Client) UsageTracker() *usage.Tracker { return &c.usage }
