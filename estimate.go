package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// estimateRequest is the request body for POST /api/diary/estimate.
// Description and ImageBase64 are both optional but at least one is required;
// a photo is sent as raw base64 (no data-URI prefix).
type estimateRequest struct {
	Description string `json:"description"`
	ImageBase64 string `json:"image_base64"`
}

// estimateResponse is the structured nutrition estimate returned by the AI.
// Confidence is 1-5 indicating how accurate the estimate is. The values are
// untrusted until they pass the same validation as a manual entry; nothing
// is persisted here — the user reviews and submits via POST /diary/entries.
type estimateResponse struct {
	Food       string `json:"food"`
	Calories   int    `json:"calories"`
	ProteinG   int    `json:"protein_g"`
	Confidence int    `json:"confidence"`
}

/* ─── OpenAI prompt constants ────────────────────────────────────────── */

const estimateSystemPrompt = `You are a nutrition assistant. Identify the food from the description and/or photo and return a JSON object with:
- "food" (string, cleaned up title case)
- "calories" (integer, total for the portion shown or described)
- "protein_g" (integer, total for the portion shown or described)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Use your knowledge of similar foods to approximate. Only return {"error": "unrecognized"} if the input is not food at all (e.g. random characters, non-food objects).
Return only valid JSON, no explanation.`

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
// Content is either a plain string or a parts array when a photo is attached.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string                 `json:"model"`
	Messages       []openAIMessage        `json:"messages"`
	Temperature    float64                `json:"temperature"`
	ResponseFormat map[string]interface{} `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func callOpenAI(ctx context.Context, messages []openAIMessage, baseURL string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	reqBody := openAIRequest{
		Model:       "gpt-4o-mini",
		Messages:    messages,
		Temperature: 0,
		ResponseFormat: map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	// Parse the response to extract choices[0].message.content
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// estimateFood handles POST /api/diary/estimate.
// Accepts a food description and/or a photo, calls OpenAI to parse it into a
// nutrition estimate, and returns the estimate for the user to accept. An
// unidentifiable input returns {"error": "could not identify"} with nothing
// persisted and no automatic retry.
func (h *Handler) estimateFood(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" && req.ImageBase64 == "" {
		apiError(c, http.StatusBadRequest, "description or image_base64 is required")
		return
	}

	userContent := buildEstimateContent(req)
	messages := []openAIMessage{
		{Role: "system", Content: estimateSystemPrompt},
		{Role: "user", Content: userContent},
	}

	content, err := callOpenAI(c.Request.Context(), messages, h.openAIBaseURL)
	if err != nil {
		log.Printf("[estimate] OpenAI error: %v", err)
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	// Unparseable model output is a recognition failure, not a transport
	// error: the request succeeded, the model just didn't produce a usable
	// reply. Surfaced the same as "unrecognized" — nothing persisted, the
	// user can retry manually.
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errorResp); err != nil {
		log.Printf("[estimate] Unparseable OpenAI reply, treating as unrecognized: %v", err)
		c.JSON(http.StatusOK, gin.H{"error": "could not identify"})
		return
	}
	if errorResp.Error == "unrecognized" {
		c.JSON(http.StatusOK, gin.H{"error": "could not identify"})
		return
	}

	var estimate estimateResponse
	if err := json.Unmarshal([]byte(content), &estimate); err != nil {
		log.Printf("[estimate] Reply is JSON but not an estimate, treating as unrecognized: %v", err)
		c.JSON(http.StatusOK, gin.H{"error": "could not identify"})
		return
	}

	// The AI's output is untrusted input: hold it to the same rules as a
	// manual entry before showing it as acceptable.
	if estimate.Food == "" || estimate.Calories <= 0 || estimate.ProteinG < 0 {
		c.JSON(http.StatusOK, gin.H{"error": "could not identify"})
		return
	}

	c.JSON(http.StatusOK, estimate)
}

// buildEstimateContent assembles the user message: a plain string for
// text-only requests, a text+image parts array when a photo is attached.
func buildEstimateContent(req estimateRequest) any {
	if req.ImageBase64 == "" {
		return req.Description
	}
	parts := []map[string]any{}
	if req.Description != "" {
		parts = append(parts, map[string]any{"type": "text", "text": req.Description})
	}
	parts = append(parts, map[string]any{
		"type": "image_url",
		"image_url": map[string]string{
			"url": "data:image/jpeg;base64," + req.ImageBase64,
		},
	})
	return parts
}
