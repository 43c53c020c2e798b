package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/hoot-be/internal/common"
	"github.com/isdelr/hoot-be/internal/models"
)

// maxAggregateRetries bounds the optimistic read-modify-write loop on a hoot.
const maxAggregateRetries = 32

// commentRecord is the stored form of a comment inside hoots.comments_json.
type commentRecord struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// hootStore persists hoot aggregates. Comments live inside their hoot row and
// are only ever written together with it.
type hootStore struct {
	db *sql.DB
}

const selectHoot = `
	SELECT h.id, h.title, h.text, h.category, h.author_id, u.username, u.created_at,
	       h.comments_json, h.version, h.created_at, h.updated_at
	FROM hoots h
	JOIN users u ON u.id = h.author_id`

func (s hootStore) scanHoot(scanner interface{ Scan(...interface{}) error }) (models.Hoot, error) {
	var h models.Hoot
	var commentsJSON string
	var authorCreated, created, updated int64
	err := scanner.Scan(
		&h.ID, &h.Title, &h.Text, &h.Category,
		&h.Author.ID, &h.Author.Username, &authorCreated,
		&commentsJSON, &h.Version, &created, &updated,
	)
	if err != nil {
		return models.Hoot{}, err
	}
	h.Author.CreatedAt = fromUnixNano(authorCreated)
	h.CreatedAt = fromUnixNano(created)
	h.UpdatedAt = fromUnixNano(updated)

	if h.Comments, err = decodeComments(commentsJSON); err != nil {
		return models.Hoot{}, fmt.Errorf("hoot %s: %w", h.ID, err)
	}
	return h, nil
}

// list returns all hoots, newest first.
func (s hootStore) list(ctx context.Context) ([]models.Hoot, error) {
	rows, err := s.db.QueryContext(ctx, selectHoot+" ORDER BY h.created_at DESC, h.rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hoots := []models.Hoot{}
	for rows.Next() {
		h, err := s.scanHoot(rows)
		if err != nil {
			return nil, err
		}
		hoots = append(hoots, h)
	}
	return hoots, rows.Err()
}

// load reads one hoot with its author resolved. Comment authors carry only their ID.
func (s hootStore) load(ctx context.Context, id string) (models.Hoot, error) {
	h, err := s.scanHoot(s.db.QueryRowContext(ctx, selectHoot+" WHERE h.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Hoot{}, fmt.Errorf("hoot %s: %w", id, common.ErrorNotFound)
		}
		return models.Hoot{}, err
	}
	return h, nil
}

func (s hootStore) insert(ctx context.Context, h models.Hoot) error {
	commentsJSON, err := encodeComments(h.Comments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hoots (id, title, text, category, author_id, comments_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Title, h.Text, h.Category, h.Author.ID, commentsJSON, h.Version,
		h.CreatedAt.UnixNano(), h.UpdatedAt.UnixNano())
	return err
}

// mutate runs fn against a fresh copy of the hoot and writes the result back,
// provided nobody else wrote in between. On a lost race it reloads and tries again.
// author_id is never written, so a hoot's author cannot change here.
func (s hootStore) mutate(ctx context.Context, id string, fn func(h *models.Hoot) error) (models.Hoot, error) {
	for attempt := 0; attempt < maxAggregateRetries; attempt++ {
		h, err := s.load(ctx, id)
		if err != nil {
			return models.Hoot{}, err
		}
		if err := fn(&h); err != nil {
			return models.Hoot{}, err
		}

		commentsJSON, err := encodeComments(h.Comments)
		if err != nil {
			return models.Hoot{}, err
		}
		h.UpdatedAt = time.Now().UTC()

		res, err := s.db.ExecContext(ctx, `
			UPDATE hoots
			SET title = ?, text = ?, category = ?, comments_json = ?, updated_at = ?, version = version + 1
			WHERE id = ? AND version = ?`,
			h.Title, h.Text, h.Category, commentsJSON, h.UpdatedAt.UnixNano(), h.ID, h.Version)
		if err != nil {
			return models.Hoot{}, fmt.Errorf("failed to save hoot %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return models.Hoot{}, err
		}
		if n == 1 {
			h.Version++
			return h, nil
		}
		if err := ctx.Err(); err != nil {
			return models.Hoot{}, err
		}
	}
	return models.Hoot{}, fmt.Errorf("hoot %s: %w", id, common.ErrorConcurrentModification)
}

// remove deletes the hoot if it is still owned by authorID.
func (s hootStore) remove(ctx context.Context, id, authorID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM hoots WHERE id = ? AND author_id = ?", id, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete hoot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("hoot %s: %w", id, common.ErrorNotFound)
	}
	return nil
}

// resolveCommentAuthors replaces the ID-only comment authors with full users.
func (s hootStore) resolveCommentAuthors(ctx context.Context, hoots ...*models.Hoot) error {
	seen := map[string]bool{}
	var ids []interface{}
	for _, h := range hoots {
		for _, c := range h.Comments {
			if !seen[c.Author.ID] {
				seen[c.Author.ID] = true
				ids = append(ids, c.Author.ID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username, created_at FROM users WHERE id IN ("+placeholders+")", ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	users := make(map[string]models.User, len(ids))
	for rows.Next() {
		var u models.User
		var createdAt int64
		if err := rows.Scan(&u.ID, &u.Username, &createdAt); err != nil {
			return err
		}
		u.CreatedAt = fromUnixNano(createdAt)
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, h := range hoots {
		for i := range h.Comments {
			if u, ok := users[h.Comments[i].Author.ID]; ok {
				h.Comments[i].Author = u
			}
		}
	}
	return nil
}

func decodeComments(raw string) ([]models.Comment, error) {
	var records []commentRecord
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}
	comments := make([]models.Comment, 0, len(records))
	for _, r := range records {
		comments = append(comments, models.Comment{
			ID:        r.ID,
			Text:      r.Text,
			Author:    models.User{ID: r.AuthorID},
			CreatedAt: r.CreatedAt,
		})
	}
	return comments, nil
}

func encodeComments(comments []models.Comment) (string, error) {
	records := make([]commentRecord, 0, len(comments))
	for _, c := range comments {
		records = append(records, commentRecord{
			ID:        c.ID,
			Text:      c.Text,
			AuthorID:  c.Author.ID,
			CreatedAt: c.CreatedAt,
		})
	}
	b, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode comments: %w", err)
	}
	return string(b), nil
}
