// Package ai, Gemini API ile konuşan hafif bir client sağlar.
//
// Neden SDK değil, doğrudan REST?
// Gemini'nin resmi Go SDK'sı ağır bir bağımlılık ağacı getiriyor
// (cloud.google.com/go + grpc). Bizim ihtiyacımız iki HTTP endpoint:
//   - generateContent        → tek seferlik yanıt (başlık, özet, moderasyon)
//   - streamGenerateContent  → SSE ile chunk chunk yanıt (chat)
// net/http + encoding/json bu işi görür; SSE parse'ı bufio.Scanner ile yapılır.
//
// Agent interface'i service katmanının bağımlılık noktasıdır —
// testlerde sahte bir agent ile AI çağrısı yapmadan chat akışı test edilir.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Agent, AI metin üretimi için interface.
type Agent interface {
	// Generate, tek seferlik yanıt üretir (başlık, özet gibi kısa işler).
	Generate(ctx context.Context, model, system, prompt string) (string, error)

	// GenerateJSON, modeli JSON çıktıya zorlar ve yanıtı out'a unmarshal eder.
	// Moderasyon gibi yapısal yanıt gereken işlerde kullanılır.
	GenerateJSON(ctx context.Context, model, system, prompt string, out any) error

	// Stream, yanıtı SSE ile chunk chunk üretir. Her text parçası için
	// onChunk çağrılır; onChunk error dönerse stream iptal edilir.
	// Dönen değer: tam yanıt metni ve toplam token sayısı.
	Stream(ctx context.Context, model, system string, history []Turn, onChunk func(text string) error) (string, int, error)
}

// Turn, konuşma geçmişindeki tek bir mesaj.
// Role: "user" veya "model" (Gemini assistant'a "model" der).
type Turn struct {
	Role string
	Text string
}

// Client, Gemini REST API implementasyonu.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient, Gemini client'ı oluşturur.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		// Streaming yanıtlar uzun sürebilir — timeout'u cömert tutuyoruz.
		// Asıl iptal mekanizması context'tir (client disconnect → ctx cancel).
		http: &http.Client{Timeout: 120 * time.Second},
	}
}

// --- Gemini wire format ---

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	SafetySettings    []geminiSafetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// defaultSafetySettings, sadece yüksek riskli içeriği bloklar.
// Asıl moderasyon bizim kendi moderasyon adımımızda yapılır —
// model tarafındaki filtre son savunma hattıdır.
var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
}

func buildRequest(system, prompt string, history []Turn, mimeType string) geminiRequest {
	req := geminiRequest{SafetySettings: defaultSafetySettings}

	if system != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, t := range history {
		req.Contents = append(req.Contents, geminiContent{
			Role:  t.Role,
			Parts: []geminiPart{{Text: t.Text}},
		})
	}
	if prompt != "" {
		req.Contents = append(req.Contents, geminiContent{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		})
	}
	if mimeType != "" {
		req.GenerationConfig = &geminiGenerationConfig{ResponseMimeType: mimeType}
	}
	return req
}

func (c *Client) post(ctx context.Context, url string, body geminiRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// API key header'da gönderilir — URL'de olursa access log'lara sızar.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini API returned %d: %s", resp.StatusCode, string(raw))
	}
	return resp, nil
}

// Generate, tek seferlik içerik üretir.
func (c *Client) Generate(ctx context.Context, model, system, prompt string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	resp, err := c.post(ctx, url, buildRequest(system, prompt, nil, ""))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini API error %d: %s", out.Error.Code, out.Error.Message)
	}

	text := extractText(&out)
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}
	return strings.TrimSpace(text), nil
}

// GenerateJSON, responseMimeType=application/json ile modeli yapısal
// çıktıya zorlar ve yanıtı out'a unmarshal eder.
func (c *Client) GenerateJSON(ctx context.Context, model, system, prompt string, out any) error {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)

	resp, err := c.post(ctx, url, buildRequest(system, prompt, nil, "application/json"))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if gr.Error != nil {
		return fmt.Errorf("gemini API error %d: %s", gr.Error.Code, gr.Error.Message)
	}

	text := extractText(&gr)
	if text == "" {
		return fmt.Errorf("empty response from gemini")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini returned invalid JSON: %w", err)
	}
	return nil
}

// Stream, SSE (Server-Sent Events) ile chunk chunk yanıt üretir.
//
// Gemini'nin ?alt=sse endpoint'i her chunk'ı "data: {json}\n\n" satırı
// olarak gönderir. Her satırı parse edip text parçasını onChunk'a iletiriz.
// Son chunk usageMetadata taşır — toplam token oradan okunur.
func (c *Client) Stream(ctx context.Context, model, system string, history []Turn, onChunk func(text string) error) (string, int, error) {
	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.baseURL, model)

	resp, err := c.post(ctx, url, buildRequest(system, "", history, ""))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	var full strings.Builder
	var totalTokens int

	scanner := bufio.NewScanner(resp.Body)
	// Tek bir SSE satırı büyük olabilir — default 64KB buffer yetmeyebilir.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Bozuk chunk'ı atla — stream devam edebilir.
			continue
		}
		if chunk.Error != nil {
			return full.String(), totalTokens, fmt.Errorf("gemini stream error %d: %s", chunk.Error.Code, chunk.Error.Message)
		}
		if chunk.UsageMetadata.TotalTokenCount > 0 {
			totalTokens = chunk.UsageMetadata.TotalTokenCount
		}

		text := extractText(&chunk)
		if text == "" {
			continue
		}
		full.WriteString(text)
		if err := onChunk(text); err != nil {
			return full.String(), totalTokens, err
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), totalTokens, fmt.Errorf("gemini stream read failed: %w", err)
	}

	return full.String(), totalTokens, nil
}

func extractText(r *geminiResponse) string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
