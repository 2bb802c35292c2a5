// Package present сводит автоматические поля элемента и ручные
// переопределения в эффективные значения. Все потребители (лента, карточка,
// RSS/Atom, sitemap, админский список) читают элемент только через Effective.
package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/news-digest/internal/models"
)

// PublicURLFunc превращает путь в объектном хранилище в публичную ссылку.
type PublicURLFunc func(path *string) *string

// View — эффективное представление элемента.
type View struct {
	ID           uuid.UUID
	SourceID     uuid.UUID
	SourceName   string
	URL          string
	Title        string
	PublishedAt  time.Time
	Summary      models.SummaryBlock
	WhyItMatters string
	Tags         []string
	RiskFlags    []string
	ImageURL     *string
	IsFeatured   bool
	UpdatedAt    time.Time
}

// Effective применяет правило override ?? автоматическое значение.
// Теги: непустой override целиком заменяет автоматические.
func Effective(it models.NewsItem, images PublicURLFunc) View {
	v := View{
		ID:           it.ID,
		SourceID:     it.SourceID,
		SourceName:   it.SourceName,
		URL:          it.URL,
		Title:        firstText(it.TitleOverride, it.Title, &it.URL),
		PublishedAt:  it.EffectivePublishedAt(),
		Summary:      ParseSummary(firstText(it.SummaryOverrideZh, it.SummaryZh)),
		WhyItMatters: firstText(it.WhyItMattersOverride, it.WhyItMatters),
		Tags:         it.Tags,
		RiskFlags:    it.RiskFlags,
		IsFeatured:   it.IsFeatured,
		UpdatedAt:    it.UpdatedAt,
	}

	if len(it.TagsOverride) > 0 {
		v.Tags = it.TagsOverride
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	if v.RiskFlags == nil {
		v.RiskFlags = []string{}
	}

	switch {
	case nonEmpty(it.ImageOverrideURL):
		v.ImageURL = it.ImageOverrideURL
	case images != nil && images(it.ImagePath) != nil:
		v.ImageURL = images(it.ImagePath)
	case nonEmpty(it.OGImageURL):
		v.ImageURL = it.OGImageURL
	}

	return v
}

// ParseSummary разбирает сохранённую сводку {"bullets":[...],"paragraph":"..."}.
//
// Особенности:
//   - пункты могут быть строками или объектами {"bullet": "..."}; пустые отбрасываются;
//   - paragraph может быть объектом {"text": "..."};
//   - битый JSON или отсутствие paragraph -> вся строка становится абзацем.
func ParseSummary(raw string) models.SummaryBlock {
	out := models.SummaryBlock{Bullets: []string{}}
	if raw == "" {
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		out.Paragraph = raw
		return out
	}

	var bullets []json.RawMessage
	if err := json.Unmarshal(obj["bullets"], &bullets); err == nil {
		for _, b := range bullets {
			if s := bulletText(b); s != "" {
				out.Bullets = append(out.Bullets, s)
			}
		}
	}

	out.Paragraph = paragraphText(obj["paragraph"], raw)
	return out
}

func bulletText(b json.RawMessage) string {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}

	var obj struct {
		Bullet *string `json:"bullet"`
	}
	if err := json.Unmarshal(b, &obj); err == nil && obj.Bullet != nil {
		return *obj.Bullet
	}
	return ""
}

func paragraphText(b json.RawMessage, fallback string) string {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil || obj == nil {
		return fallback
	}

	text, ok := obj["text"]
	if !ok || bytes.Equal(bytes.TrimSpace(text), []byte("null")) {
		return fallback
	}
	if err := json.Unmarshal(text, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(text))
}

func firstText(vals ...*string) string {
	for _, v := range vals {
		if nonEmpty(v) {
			return *v
		}
	}
	return ""
}

func nonEmpty(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}
