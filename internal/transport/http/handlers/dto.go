package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/pribylovaa/news-digest/internal/models"
	"github.com/pribylovaa/news-digest/internal/present"
	"github.com/pribylovaa/news-digest/internal/service"
)

// NewsDTO — публичное представление элемента (эффективные значения).
type NewsDTO struct {
	ID           string              `json:"id"`
	SourceID     string              `json:"sourceId"`
	SourceName   string              `json:"sourceName,omitempty"`
	URL          string              `json:"url"`
	Title        string              `json:"title"`
	PublishedAt  time.Time           `json:"publishedAt"`
	Summary      models.SummaryBlock `json:"summary"`
	WhyItMatters string              `json:"whyItMatters"`
	Tags         []string            `json:"tags"`
	RiskFlags    []string            `json:"riskFlags"`
	ImageURL     *string             `json:"imageUrl"`
	IsFeatured   bool                `json:"isFeatured"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

func newsFromView(v present.View) NewsDTO {
	return NewsDTO{
		ID:           v.ID.String(),
		SourceID:     v.SourceID.String(),
		SourceName:   v.SourceName,
		URL:          v.URL,
		Title:        v.Title,
		PublishedAt:  v.PublishedAt,
		Summary:      v.Summary,
		WhyItMatters: v.WhyItMatters,
		Tags:         v.Tags,
		RiskFlags:    v.RiskFlags,
		ImageURL:     v.ImageURL,
		IsFeatured:   v.IsFeatured,
		UpdatedAt:    v.UpdatedAt,
	}
}

// NewsListResponse — страница ленты.
type NewsListResponse struct {
	Items         []NewsDTO `json:"items"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

// OverridesDTO — ручные значения как они сохранены.
type OverridesDTO struct {
	Title        *string    `json:"title"`
	SummaryZh    *string    `json:"summaryZh"`
	WhyItMatters *string    `json:"whyItMatters"`
	Tags         []string   `json:"tags"`
	ImageURL     *string    `json:"imageUrl"`
	PublishedAt  *time.Time `json:"publishedAt"`
}

// AdminNewsDTO — элемент для модерации: эффективные значения плюс редакционное состояние.
type AdminNewsDTO struct {
	NewsDTO
	Status         models.Status `json:"status"`
	Error          *string       `json:"error"`
	IsHidden       bool          `json:"isHidden"`
	EditorNote     *string       `json:"editorNote"`
	EditedByUserID *string       `json:"editedByUserId"`
	EditedAt       *time.Time    `json:"editedAt"`
	FetchedAt      *time.Time    `json:"fetchedAt"`
	CreatedAt      time.Time     `json:"createdAt"`
	Overrides      OverridesDTO  `json:"overrides"`
}

func adminFromItem(it models.NewsItem, v present.View) AdminNewsDTO {
	tags := it.TagsOverride
	if tags == nil {
		tags = []string{}
	}
	return AdminNewsDTO{
		NewsDTO:        newsFromView(v),
		Status:         it.Status,
		Error:          it.Error,
		IsHidden:       it.IsHidden,
		EditorNote:     it.EditorNote,
		EditedByUserID: it.EditedByUserID,
		EditedAt:       it.EditedAt,
		FetchedAt:      it.FetchedAt,
		CreatedAt:      it.CreatedAt,
		Overrides: OverridesDTO{
			Title:        it.TitleOverride,
			SummaryZh:    it.SummaryOverrideZh,
			WhyItMatters: it.WhyItMattersOverride,
			Tags:         tags,
			ImageURL:     it.ImageOverrideURL,
			PublishedAt:  it.PublishedAtOverride,
		},
	}
}

// AdminListResponse — страница админского списка.
type AdminListResponse struct {
	Items         []AdminNewsDTO `json:"items"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

// SourceDTO — публичный источник.
type SourceDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Language string  `json:"language"`
	Website  string  `json:"website"`
	FeedURL  *string `json:"feedUrl"`
}

func sourceFromModel(s models.NewsSource) SourceDTO {
	return SourceDTO{
		ID:       s.ID.String(),
		Name:     s.Name,
		Language: s.Language,
		Website:  s.Website,
		FeedURL:  s.FeedURL,
	}
}

// IngestRequest — тело POST /admin/news/ingest.
type IngestRequest struct {
	URL         string `json:"url"`
	SourceID    string `json:"sourceId"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// IngestResponse — созданный или уже существующий элемент.
type IngestResponse struct {
	ID      string        `json:"id"`
	Status  models.Status `json:"status"`
	Created bool          `json:"created"`
}

// VisibilityRequest — тело POST /admin/news/visibility.
type VisibilityRequest struct {
	ID       string         `json:"id"`
	IsHidden flexBool       `json:"isHidden"`
	Status   *models.Status `json:"status,omitempty"`
}

// VisibilityResponse — результат переключения видимости.
type VisibilityResponse struct {
	ID       string         `json:"id"`
	IsHidden bool           `json:"isHidden"`
	Status   *models.Status `json:"status"`
}

func visibilityFromResult(r *service.VisibilityResult) VisibilityResponse {
	return VisibilityResponse{ID: r.ID.String(), IsHidden: r.IsHidden, Status: r.Status}
}

// IDRequest — тело с одним id (delete).
type IDRequest struct {
	ID string `json:"id"`
}

// IDResponse — ответ с id затронутого элемента.
type IDResponse struct {
	ID string `json:"id"`
}

// ReprocessResponse — итог немедленного прогона.
type ReprocessResponse struct {
	ID     string `json:"id"`
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// DeleteAllResponse — число удалённых элементов.
type DeleteAllResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

// flexBool принимает true/false и строки "true"/"false" (формы отправляют строки).
type flexBool struct {
	Set   bool
	Value bool
}

var errNotBool = errors.New(`expected true, false, "true" or "false"`)

func (b *flexBool) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	v, ok := parseBool(s)
	if !ok {
		return errNotBool
	}
	b.Set, b.Value = true, v
	return nil
}

func parseBool(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
