package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tuluyen/internal/model"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini talks to the Gemini API over plain HTTP, requesting JSON output
// for text content and base64 PNG bytes for avatars.
type Gemini struct {
	apiKey     string
	textModel  string
	imageModel string
	endpoint   string
	httpClient *http.Client
}

func NewGemini(apiKey, textModel, imageModel string) *Gemini {
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "imagen-4.0-generate-001"
	}
	return &Gemini{
		apiKey:     apiKey,
		textModel:  textModel,
		imageModel: imageModel,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// generateJSON runs one prompt in JSON mode and decodes the model's output
// into out.
func (g *Gemini) generateJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	if g.apiKey == "" {
		return errors.New("gemini api key is not configured")
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      temperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.endpoint, g.textModel, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini status %s: %s", resp.Status, truncate(respBody, 300))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("decode response wrapper: %w", err)
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("prompt blocked: %s", parsed.PromptFeedback.BlockReason)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return errors.New("gemini response missing content")
	}

	text := parsed.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode generated payload: %w", err)
	}
	return nil
}

func (g *Gemini) Tasks(ctx context.Context, ch model.Character, existingTitles []string, diaryEntry string) ([]TaskSeed, error) {
	var seeds []TaskSeed
	if err := g.generateJSON(ctx, taskPrompt(ch, existingTitles, diaryEntry), 0.9, &seeds); err != nil {
		return nil, err
	}
	return SanitizeTasks(seeds), nil
}

func (g *Gemini) EventTasks(ctx context.Context, ch model.Character, ev model.UserEvent) ([]TaskSeed, error) {
	var seeds []TaskSeed
	if err := g.generateJSON(ctx, eventTaskPrompt(ch, ev), 0.8, &seeds); err != nil {
		return nil, err
	}
	return SanitizeTasks(seeds), nil
}

func (g *Gemini) Encounter(ctx context.Context, ch model.Character) (*Encounter, error) {
	var enc Encounter
	// Higher temperature for more unexpected encounters.
	if err := g.generateJSON(ctx, encounterPrompt(ch), 1.1, &enc); err != nil {
		return nil, err
	}
	out := SanitizeEncounter(&enc)
	if out == nil {
		return nil, errors.New("encounter payload failed validation")
	}
	return out, nil
}

func (g *Gemini) Techniques(ctx context.Context, ch model.Character, existingTitles []string) ([]TaskSeed, error) {
	var seeds []TaskSeed
	if err := g.generateJSON(ctx, techniquePrompt(ch, existingTitles), 0.9, &seeds); err != nil {
		return nil, err
	}
	return SanitizeTasks(seeds), nil
}

func (g *Gemini) ShopItems(ctx context.Context, ch model.Character) ([]ShopSeed, error) {
	var seeds []ShopSeed
	if err := g.generateJSON(ctx, shopPrompt(ch), 1.0, &seeds); err != nil {
		return nil, err
	}
	return SanitizeShop(seeds), nil
}

type imagenRequest struct {
	Instances []struct {
		Prompt string `json:"prompt"`
	} `json:"instances"`
	Parameters struct {
		SampleCount int    `json:"sampleCount"`
		AspectRatio string `json:"aspectRatio,omitempty"`
	} `json:"parameters"`
}

type imagenResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

// Avatar returns a base64-encoded PNG portrait.
func (g *Gemini) Avatar(ctx context.Context, ch model.Character, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("gemini api key is not configured")
	}

	var reqPayload imagenRequest
	reqPayload.Instances = []struct {
		Prompt string `json:"prompt"`
	}{{Prompt: avatarPrompt(ch, prompt)}}
	reqPayload.Parameters.SampleCount = 1
	reqPayload.Parameters.AspectRatio = "1:1"

	body, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:predict?key=%s", g.endpoint, g.imageModel, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call imagen: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagen status %s: %s", resp.Status, truncate(respBody, 300))
	}

	var parsed imagenResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Predictions) == 0 || parsed.Predictions[0].BytesBase64Encoded == "" {
		return "", errors.New("imagen response missing image")
	}
	return parsed.Predictions[0].BytesBase64Encoded, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
