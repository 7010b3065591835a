// Package gemini is a minimal REST client for the Gemini
// generateContent API, implementing both the evidence analyzer and the
// conversational agent boundaries. Conversation state is kept client
// side as an explicit history.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solaris-forensic/casegraph/internal/analyzer"
	"github.com/solaris-forensic/casegraph/internal/config"
	"github.com/solaris-forensic/casegraph/internal/logger"
	"github.com/solaris-forensic/casegraph/internal/models"
)

// ErrNoAPIKey is returned by New when the configured key variable is
// unset.
var ErrNoAPIKey = errors.New("gemini api key not set")

// Client talks to the Gemini API.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New builds a client from configuration. The API key is read from the
// configured environment variable.
func New(cfg config.Gemini, log *logger.Logger) (*Client, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%w (env %s)", ErrNoAPIKey, cfg.APIKeyEnv)
	}
	return &Client{
		log:        log,
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// --- Wire types ---

type genRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []toolDecl        `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text             string            `json:"text,omitempty"`
	InlineData       *inlineData       `json:"inlineData,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type toolDecl struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type genResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// createNodeDeclaration is the single capability exposed to the
// assistant: propose a graph node for human approval.
var createNodeDeclaration = functionDeclaration{
	Name:        "create_node",
	Description: "Create a new node/entity in the knowledge graph. Use this when the user explicitly asks to add information or when you identify a missing critical entity.",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label":       map[string]any{"type": "string", "description": "Short name of the entity (e.g., 'John Doe', 'Contract B')"},
			"type":        map[string]any{"type": "string", "description": "One of: ENTITY, EVENT, CONFLICT, DISCREPANCY"},
			"description": map[string]any{"type": "string", "description": "Context or details about this node"},
			"timestamp":   map[string]any{"type": "string", "description": "ISO Date string if applicable"},
		},
		"required": []string{"label", "type"},
	},
}

// generate posts one request and returns the first candidate content.
func (c *Client) generate(ctx context.Context, req genRequest) (*content, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var out genResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return nil, fmt.Errorf("gemini error %d: %s", out.Error.Code, out.Error.Message)
		}
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}
	return &out.Candidates[0].Content, nil
}

func evidenceParts(contents []analyzer.Content) []part {
	parts := make([]part, 0, len(contents))
	for _, cnt := range contents {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: cnt.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(cnt.Data),
		}})
	}
	return parts
}

func textOf(c *content) string {
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}

// Analyze runs the extraction pass over one evidence batch and parses
// the strict-JSON fragment. Any malformed response fails the batch.
func (c *Client) Analyze(ctx context.Context, contents []analyzer.Content) (*models.GraphFragment, error) {
	parts := append(evidenceParts(contents), part{Text: analyzer.ExtractionPrompt})
	reply, err := c.generate(ctx, genRequest{
		Contents:          []content{{Role: "user", Parts: parts}},
		SystemInstruction: &content{Parts: []part{{Text: analyzer.ExtractionInstruction}}},
		GenerationConfig:  &generationConfig{ResponseMIMEType: "application/json"},
	})
	if err != nil {
		return nil, err
	}
	frag, err := analyzer.ParseFragment(textOf(reply))
	if err != nil {
		c.log.Error("malformed extraction response", "error", err)
		return nil, err
	}
	return frag, nil
}
