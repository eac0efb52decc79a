package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const articleColumns = "id, title, description, content, url, source, author, published_at, category, sentiment_score, ai_summary, keywords, created_at, updated_at"

// PostgresStore persists articles in Postgres. The articles table carries a
// unique constraint on url; conflict resolution happens in the reconciler
// via explicit find-then-write, not ON CONFLICT.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// Open connects to Postgres with sane pool settings and verifies the
// connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the articles table when it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS articles (
        id BIGSERIAL PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        content TEXT NOT NULL DEFAULT '',
        url TEXT NOT NULL UNIQUE,
        source TEXT NOT NULL DEFAULT '',
        author TEXT NOT NULL DEFAULT '',
        published_at TIMESTAMPTZ,
        category TEXT NOT NULL DEFAULT '',
        sentiment_score DOUBLE PRECISION,
        ai_summary TEXT,
        keywords TEXT[],
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FindByURL loads the article stored under url, or ports.ErrNotFound.
func (s *PostgresStore) FindByURL(ctx context.Context, url string) (domain.StoredArticle, error) {
	query, args, err := psql.Select(articleColumns).
		From("articles").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("build find query: %w", err)
	}

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredArticle{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("find by url: %w", err)
	}
	return article, nil
}

// Insert stores a new article and returns it with the server-assigned id and
// timestamps.
func (s *PostgresStore) Insert(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error) {
	query, args, err := psql.Insert("articles").
		Columns("title", "description", "content", "url", "source", "author", "published_at", "category", "sentiment_score", "ai_summary", "keywords").
		Values(article.Title, article.Description, article.Content, article.URL, article.Source, article.Author, nullTime(article.PublishedAt), article.Category, article.SentimentScore, article.AISummary, keywordsValue(article.Keywords)).
		Suffix("RETURNING " + articleColumns).
		ToSql()
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("build insert query: %w", err)
	}

	stored, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("insert article: %w", err)
	}
	return stored, nil
}

// Update rewrites every mutable column of the row identified by id and bumps
// updated_at.
func (s *PostgresStore) Update(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error) {
	query, args, err := psql.Update("articles").
		Set("title", article.Title).
		Set("description", article.Description).
		Set("content", article.Content).
		Set("url", article.URL).
		Set("source", article.Source).
		Set("author", article.Author).
		Set("published_at", nullTime(article.PublishedAt)).
		Set("category", article.Category).
		Set("sentiment_score", article.SentimentScore).
		Set("ai_summary", article.AISummary).
		Set("keywords", keywordsValue(article.Keywords)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": article.ID}).
		Suffix("RETURNING " + articleColumns).
		ToSql()
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("build update query: %w", err)
	}

	stored, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredArticle{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("update article: %w", err)
	}
	return stored, nil
}

// ListRecent returns the most recently updated articles.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]domain.StoredArticle, error) {
	if limit <= 0 {
		limit = 50
	}

	query, args, err := psql.Select(articleColumns).
		From("articles").
		OrderBy("updated_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer rows.Close()

	var articles []domain.StoredArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.StoredArticle, error) {
	var (
		a           domain.StoredArticle
		publishedAt sql.NullTime
		sentiment   sql.NullFloat64
		summary     sql.NullString
		keywords    pq.StringArray
	)

	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Content, &a.URL, &a.Source, &a.Author,
		&publishedAt, &a.Category, &sentiment, &summary, &keywords,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.StoredArticle{}, err
	}

	if publishedAt.Valid {
		a.PublishedAt = publishedAt.Time
	}
	if sentiment.Valid {
		a.SentimentScore = &sentiment.Float64
	}
	if summary.Valid {
		a.AISummary = &summary.String
	}
	if keywords != nil {
		a.Keywords = []string(keywords)
	}

	return a, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func keywordsValue(keywords []string) any {
	if keywords == nil {
		return nil
	}
	return pq.Array(keywords)
}
