package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Patch — поле частичного обновления: различает «не передано», null и значение.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON вызывается только для присутствующих в JSON ключей.
func (p *Patch[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		p.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

// SetTo возвращает установленный Patch со значением v.
func SetTo[T any](v T) Patch[T] { return Patch[T]{Set: true, Value: &v} }

// Clear возвращает установленный Patch со значением null.
func Clear[T any]() Patch[T] { return Patch[T]{Set: true} }

// ItemEdit — нормализованная правка элемента администратором.
//
// Особенности:
//   - незаданные (Set == false) поля не трогаются;
//   - пустые строки уже приведены к nil;
//   - TagsOverride никогда не пишется как null, только как массив (возможно пустой).
type ItemEdit struct {
	TitleOverride        Patch[string]
	PublishedAtOverride  Patch[time.Time]
	SummaryOverrideZh    Patch[string]
	WhyItMattersOverride Patch[string]
	TagsOverride         Patch[[]string]
	ImageOverrideURL     Patch[string]
	EditorNote           Patch[string]

	IsHidden   *bool
	IsFeatured *bool
	Status     *Status

	EditedBy string
	EditedAt time.Time
}

// Fields перечисляет изменяемые поля в нотации API (для аудита).
func (e ItemEdit) Fields() []string {
	out := []string{"editedByUserId", "editedAt"}
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(e.TitleOverride.Set, "titleOverride")
	add(e.SummaryOverrideZh.Set, "summaryOverrideZh")
	add(e.WhyItMattersOverride.Set, "whyItMattersOverride")
	add(e.TagsOverride.Set, "tagsOverride")
	add(e.ImageOverrideURL.Set, "imageOverrideUrl")
	add(e.PublishedAtOverride.Set, "publishedAtOverride")
	add(e.IsHidden != nil, "isHidden")
	add(e.IsFeatured != nil, "isFeatured")
	add(e.EditorNote.Set, "editorNote")
	add(e.Status != nil, "status")
	return out
}

// PipelineUpdate — результат прогона конвейера для записи в хранилище.
//
// Извлечённые метаданные пишутся всегда. ContentHash, Summary и ImagePath
// при nil оставляют сохранённые значения без изменений.
type PipelineUpdate struct {
	Title       *string
	PublishedAt *time.Time
	FetchedAt   time.Time
	OGImageURL  *string
	RawExcerpt  string

	ContentHash *string
	Summary     *Summary
	ImagePath   *string

	Status Status
	Error  *string
}

// EditRequest — правка из админского API до нормализации.
// UseAI сбрасывает все override-поля к автоматическим значениям.
type EditRequest struct {
	TitleOverride        Patch[string]    `json:"titleOverride"`
	SummaryOverrideZh    Patch[string]    `json:"summaryOverrideZh"`
	WhyItMattersOverride Patch[string]    `json:"whyItMattersOverride"`
	TagsOverride         Patch[[]string]  `json:"tagsOverride"`
	ImageOverrideURL     Patch[string]    `json:"imageOverrideUrl"`
	PublishedAtOverride  Patch[time.Time] `json:"publishedAtOverride"`
	IsHidden             *bool            `json:"isHidden"`
	IsFeatured           *bool            `json:"isFeatured"`
	EditorNote           Patch[string]    `json:"editorNote"`
	UseAI                bool             `json:"useAi"`
}

// IngestRequest — ручное добавление ссылки администратором.
type IngestRequest struct {
	URL         string
	SourceID    string
	PublishedAt string
}

// IngestResult — созданный или уже существующий элемент.
type IngestResult struct {
	ID      uuid.UUID
	Status  Status
	Created bool
}
