// Package summarizer обращается к OpenAI-совместимому chat-completions API
// и приводит ответ модели к нормализованной китайской сводке.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pribylovaa/news-digest/internal/models"
)

const systemPrompt = `你是严谨的中文政策资讯编辑。请基于原文内容输出 JSON。
要求：
- 不可编造，缺失信息请写“未在原文中明确说明”。
- 输出字段：summaryBullets (数组，5条要点), summaryParagraph (1段概述), whyItMatters (1-2句), tags (3-8个中文标签), riskFlags (从 policy/travel/tax/trade/embassy/security 中选择 0-3 个)。
- summaryBullets 与 summaryParagraph 为中文。`

// maxErrorBody — сколько байт тела ошибки сохраняется в ExternalServiceError.
const maxErrorBody = 2048

// Config — параметры клиента.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxInput    int
}

// Client — клиент chat-completions.
type Client struct {
	cfg Config
	hc  *http.Client
}

// New создаёт клиента. hc == nil -> http.Client с cfg.Timeout.
func New(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.MaxInput <= 0 {
		cfg.MaxInput = 12000
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, hc: hc}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize строит сводку по тексту статьи.
//
// Ошибки:
//   - ErrNotConfigured — нет ключа API;
//   - *ExternalServiceError — статус не-2xx;
//   - *MalformedResponseError — тело или content не JSON.
func (c *Client) Summarize(ctx context.Context, excerpt string, title *string) (*models.Summary, error) {
	const op = "summarizer.Summarize"

	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: UserInput(excerpt, title, c.cfg.MaxInput)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    c.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ExternalServiceError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	content := "{}"
	if len(cr.Choices) > 0 && strings.TrimSpace(cr.Choices[0].Message.Content) != "" {
		content = cr.Choices[0].Message.Content
	}

	return decodeSummary(content)
}

// UserInput собирает пользовательское сообщение: заголовок и текст,
// обрезанный до maxRunes символов.
func UserInput(excerpt string, title *string, maxRunes int) string {
	t := NotStated
	if title != nil && strings.TrimSpace(*title) != "" {
		t = *title
	}
	if maxRunes > 0 && utf8.RuneCountInString(excerpt) > maxRunes {
		excerpt = string([]rune(excerpt)[:maxRunes])
	}
	return "标题：" + t + "\n\n正文：" + excerpt
}
