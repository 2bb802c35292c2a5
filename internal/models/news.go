// models содержит доменные сущности новостного конвейера.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status — состояние элемента в конвейере обработки.
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusFailed     Status = "FAILED"
)

// Valid сообщает, является ли значение известным статусом.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusProcessing, StatusReady, StatusFailed:
		return true
	}
	return false
}

// RiskFlag — тематическая метка чувствительности, которую ставит суммаризатор.
type RiskFlag string

const (
	RiskPolicy   RiskFlag = "policy"
	RiskTravel   RiskFlag = "travel"
	RiskTax      RiskFlag = "tax"
	RiskTrade    RiskFlag = "trade"
	RiskEmbassy  RiskFlag = "embassy"
	RiskSecurity RiskFlag = "security"
)

// AllowedRiskFlag сообщает, входит ли значение в закрытый набор флагов.
func AllowedRiskFlag(v string) bool {
	switch RiskFlag(v) {
	case RiskPolicy, RiskTravel, RiskTax, RiskTrade, RiskEmbassy, RiskSecurity:
		return true
	}
	return false
}

// NewsItem — одна обнаруженная статья и её производные/переопределённые поля.
//
// Особенности:
//   - URL уникален глобально (канонизированная форма);
//   - nil у указателей означает «значение отсутствует»;
//   - Override-поля независимы и перекрывают автоматические только при наличии значения;
//   - временные метки хранятся в UTC.
type NewsItem struct {
	ID       uuid.UUID
	SourceID uuid.UUID
	URL      string

	// Автоматические поля конвейера.
	Title        *string
	PublishedAt  *time.Time
	FetchedAt    *time.Time
	OGImageURL   *string
	RawExcerpt   *string
	ContentHash  *string
	SummaryZh    *string // JSON {"bullets":[...],"paragraph":"..."}
	WhyItMatters *string
	Tags         []string
	RiskFlags    []string
	ImagePath    *string

	// Ручные переопределения.
	TitleOverride        *string
	PublishedAtOverride  *time.Time
	SummaryOverrideZh    *string
	WhyItMattersOverride *string
	TagsOverride         []string
	ImageOverrideURL     *string

	// Редакционное состояние.
	Status         Status
	Error          *string
	IsHidden       bool
	IsFeatured     bool
	EditorNote     *string
	EditedByUserID *string
	EditedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// SourceName — имя источника (join), только для чтения.
	SourceName string
}

// HasSummary сообщает, есть ли у элемента сохранённая сводка.
func (n NewsItem) HasSummary() bool {
	return n.SummaryZh != nil && *n.SummaryZh != ""
}

// EffectivePublishedAt — дата сортировки ленты:
// override, затем автоматическая дата, затем время создания.
func (n NewsItem) EffectivePublishedAt() time.Time {
	switch {
	case n.PublishedAtOverride != nil:
		return n.PublishedAtOverride.UTC()
	case n.PublishedAt != nil:
		return n.PublishedAt.UTC()
	default:
		return n.CreatedAt.UTC()
	}
}

// DiscoveredLink — кандидат на статью, найденный на сайте или в ленте.
// PublishedAt заполняется только для ссылок из RSS/Atom.
type DiscoveredLink struct {
	URL         string
	PublishedAt *time.Time
}

// Extracted — результат разбора HTML статьи.
type Extracted struct {
	Title       *string
	PublishedAt *time.Time
	OGImageURL  *string
	Excerpt     string
}

// SummaryBlock — сериализуемая часть сводки (хранится в summary_zh).
type SummaryBlock struct {
	Bullets   []string `json:"bullets"`
	Paragraph string   `json:"paragraph"`
}

// Encode сериализует блок для хранения в summary_zh.
func (b SummaryBlock) Encode() string {
	if b.Bullets == nil {
		b.Bullets = []string{}
	}
	out, _ := json.Marshal(b)
	return string(out)
}

// Summary — нормализованный ответ суммаризатора.
type Summary struct {
	SummaryBlock
	WhyItMatters string
	Tags         []string
	RiskFlags    []string
}

// ProcessOutcome — итог одного прогона конвейера по элементу.
type ProcessOutcome string

const (
	OutcomeMissing ProcessOutcome = "missing"
	OutcomeReady   ProcessOutcome = "ready"
	OutcomeFailed  ProcessOutcome = "failed"
)

// ProcessResult — отчёт конвейера по одному элементу.
type ProcessResult struct {
	ID      uuid.UUID
	Outcome ProcessOutcome
	Error   string
}

// IngestReport — итог прогона оркестратора.
type IngestReport struct {
	Ingested  int         `json:"ingested"`
	Processed []uuid.UUID `json:"processed"`
}

// ListFilter — фильтры публичной ленты.
//
// Особенности:
//   - при Limit == 0 применяется серверный default (из config.LimitsConfig.Default);
//   - PageToken == "" -> первая страница;
//   - Start/End ограничивают эффективную дату публикации включительно.
type ListFilter struct {
	SourceID  *uuid.UUID
	Tag       string
	Start     *time.Time
	End       *time.Time
	Limit     int32
	PageToken string
}

// AdminFilter — фильтры админского списка.
// Stuck выбирает PROCESSING-элементы старше StuckBefore.
type AdminFilter struct {
	Status      *Status
	Stuck       bool
	StuckBefore time.Time
	Limit       int32
	PageToken   string
}

// Page — страница результатов со ссылкой на продолжение.
type Page struct {
	Items         []NewsItem
	NextPageToken string
}
