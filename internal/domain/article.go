package domain

import "time"

// UnknownAuthor substitutes for providers that omit the author field.
const UnknownAuthor = "Unknown"

// DefaultCategory is applied when a provider supplies no category.
const DefaultCategory = "General"

// RawArticle is the common shape every provider response is normalized into.
// It lives only in memory during one aggregation pass.
type RawArticle struct {
	Title       string
	Description string
	Content     string
	URL         string
	Source      string
	Author      string
	PublishedAt time.Time
	Category    string
}

// AnnotationResult carries the AI-computed fields for one article. It is
// always fully populated: the annotator substitutes defaults on failure so
// downstream merges never see partial values.
type AnnotationResult struct {
	SentimentScore float64
	Summary        string
	Keywords       []string
}

// AnnotationStatus enumerates the states a stored article moves through.
type AnnotationStatus string

const (
	StatusUnannotated AnnotationStatus = "unannotated"
	StatusAnnotated   AnnotationStatus = "annotated"
)

// StoredArticle is the persisted form of an article. SentimentScore,
// AISummary and Keywords stay nil until an annotation upsert fills them, and
// once set they are only ever replaced by another non-nil annotation.
type StoredArticle struct {
	ID          int64
	Title       string
	Description string
	Content     string
	URL         string
	Source      string
	Author      string
	PublishedAt time.Time
	Category    string

	SentimentScore *float64
	AISummary      *string
	Keywords       []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the annotation state from the AI fields.
func (a StoredArticle) Status() AnnotationStatus {
	if a.SentimentScore != nil && a.AISummary != nil && a.Keywords != nil {
		return StatusAnnotated
	}
	return StatusUnannotated
}

// ApplyStructural copies the provider-owned fields from a raw article,
// leaving the AI fields untouched.
func (a *StoredArticle) ApplyStructural(raw RawArticle) {
	a.Title = raw.Title
	a.Description = raw.Description
	a.Content = raw.Content
	a.URL = raw.URL
	a.Source = raw.Source
	a.Author = raw.Author
	a.PublishedAt = raw.PublishedAt
	a.Category = raw.Category
}

// ApplyAnnotation overwrites the AI fields from a fully populated result.
func (a *StoredArticle) ApplyAnnotation(res AnnotationResult) {
	score := res.SentimentScore
	summary := res.Summary
	a.SentimentScore = &score
	a.AISummary = &summary
	keywords := make([]string, len(res.Keywords))
	copy(keywords, res.Keywords)
	a.Keywords = keywords
}
