package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/isdelr/hoot-be/internal/common"
)

// Categories lists the accepted hoot categories.
var Categories = []string{"News", "Sports", "Games", "Movies", "Music", "Television"}

// Hoot is a user-authored post. It is the aggregate root for its comments.
type Hoot struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Author    User      `json:"author"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is bumped on every write and guards read-modify-write cycles.
	Version int64 `json:"-"`
}

// Comment is a reply embedded in exactly one hoot.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// HootContent carries the caller-supplied fields of a new hoot.
// There is deliberately no author field: the author always comes from the verified caller.
type HootContent struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// HootPatch carries a partial update. Nil fields are left unchanged.
type HootPatch struct {
	Title    *string `json:"title"`
	Text     *string `json:"text"`
	Category *string `json:"category"`
}

// Validate checks the required fields of new content.
func (c HootContent) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: text is required", common.ErrorValidation)
	}
	return validateCategory(c.Category)
}

// Validate checks the fields present in the patch.
func (p HootPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", common.ErrorValidation)
	}
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return fmt.Errorf("%w: text cannot be empty", common.ErrorValidation)
	}
	if p.Category != nil {
		return validateCategory(*p.Category)
	}
	return nil
}

func validateCategory(category string) error {
	if !slices.Contains(Categories, category) {
		return fmt.Errorf("%w: category must be one of %s", common.ErrorValidation, strings.Join(Categories, ", "))
	}
	return nil
}

// Apply merges the patch into the hoot. Author, ID and timestamps are never touched.
func (h *Hoot) Apply(p HootPatch) {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Text != nil {
		h.Text = *p.Text
	}
	if p.Category != nil {
		h.Category = *p.Category
	}
}

// AddComment appends a comment to the end of the list.
func (h *Hoot) AddComment(c Comment) {
	h.Comments = append(h.Comments, c)
}

// Comment returns the comment with the given id.
func (h *Hoot) Comment(id string) (Comment, error) {
	i := h.commentIndex(id)
	if i < 0 {
		return Comment{}, fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	return h.Comments[i], nil
}

// EditComment replaces the text of the comment with the given id.
func (h *Hoot) EditComment(id, text string) error {
	i := h.commentIndex(id)
	if i < 0 {
		return fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	h.Comments[i].Text = text
	return nil
}

// RemoveComment deletes the comment with the given id, keeping the order of the rest.
func (h *Hoot) RemoveComment(id string) error {
	i := h.commentIndex(id)
	if i < 0 {
		return fmt.Errorf("comment %s: %w", id, common.ErrorNotFound)
	}
	h.Comments = slices.Delete(h.Comments, i, i+1)
	return nil
}

func (h *Hoot) commentIndex(id string) int {
	return slices.IndexFunc(h.Comments, func(c Comment) bool { return c.ID == id })
}
