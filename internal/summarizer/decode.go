package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/pribylovaa/news-digest/internal/models"
)

// NotStated — подстановка для отсутствующих в ответе сведений.
const NotStated = "未在原文中明确说明"

const (
	maxBullets   = 5
	maxTags      = 8
	maxRiskFlags = 3
	listJoiner   = "；"
)

// errNotObject — content разобрался, но это не JSON-объект (null, массив, строка).
var errNotObject = errors.New("content is not a JSON object")

// rawSummary — ответ модели как есть: поля могут быть строкой, массивом
// или отсутствовать, поэтому разбираются по одному.
type rawSummary struct {
	SummaryBullets   json.RawMessage
	SummaryParagraph json.RawMessage
	WhyItMatters     json.RawMessage
	Tags             json.RawMessage
	RiskFlags        json.RawMessage
}

// decodeSummary приводит JSON модели к models.Summary.
// Ошибка возвращается, если content целиком не является JSON-объектом
// (включая null и лишние байты после объекта).
func decodeSummary(content string) (*models.Summary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if fields == nil {
		return nil, &MalformedResponseError{Err: errNotObject}
	}

	raw := rawSummary{
		SummaryBullets:   fields["summaryBullets"],
		SummaryParagraph: fields["summaryParagraph"],
		WhyItMatters:     fields["whyItMatters"],
		Tags:             fields["tags"],
		RiskFlags:        fields["riskFlags"],
	}

	flags := make([]string, 0, maxRiskFlags)
	for _, f := range stringList(raw.RiskFlags) {
		if models.AllowedRiskFlag(f) && len(flags) < maxRiskFlags {
			flags = append(flags, f)
		}
	}

	return &models.Summary{
		SummaryBlock: models.SummaryBlock{
			Bullets:   limit(stringList(raw.SummaryBullets), maxBullets),
			Paragraph: text(raw.SummaryParagraph),
		},
		WhyItMatters: text(raw.WhyItMatters),
		Tags:         limit(stringList(raw.Tags), maxTags),
		RiskFlags:    flags,
	}, nil
}

// stringList: массив -> его непустые строки; всё остальное -> пустой список.
func stringList(b json.RawMessage) []string {
	var items []any
	if len(bytes.TrimSpace(b)) == 0 || json.Unmarshal(b, &items) != nil {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// text: строка как есть; массив строк -> склейка через «；»; иначе NotStated.
func text(b json.RawMessage) string {
	var v any
	if len(bytes.TrimSpace(b)) == 0 || json.Unmarshal(b, &v) != nil {
		return NotStated
	}

	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, listJoiner)
	default:
		return NotStated
	}
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
