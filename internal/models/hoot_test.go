package models

import (
	"testing"

	"github.com/isdelr/hoot-be/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestHootContent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content HootContent
		wantErr bool
	}{
		{"valid", HootContent{Title: "T", Text: "body", Category: "News"}, false},
		{"missing title", HootContent{Text: "body", Category: "News"}, true},
		{"blank text", HootContent{Title: "T", Text: "   ", Category: "News"}, true},
		{"unknown category", HootContent{Title: "T", Text: "body", Category: "Cooking"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.content.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrorValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHootPatch_ValidateAndApply(t *testing.T) {
	require.ErrorIs(t, HootPatch{Title: ptr("")}.Validate(), common.ErrorValidation)
	require.ErrorIs(t, HootPatch{Category: ptr("Nope")}.Validate(), common.ErrorValidation)

	h := Hoot{ID: "h1", Title: "old", Text: "keep", Category: "News", Author: User{ID: "alice"}}
	p := HootPatch{Title: ptr("new"), Category: ptr("Music")}
	require.NoError(t, p.Validate())

	h.Apply(p)
	assert.Equal(t, "new", h.Title)
	assert.Equal(t, "keep", h.Text)
	assert.Equal(t, "Music", h.Category)
	assert.Equal(t, "alice", h.Author.ID)
	assert.Equal(t, "h1", h.ID)
}

func TestHoot_CommentOperations(t *testing.T) {
	h := Hoot{}
	h.AddComment(Comment{ID: "c1", Text: "first"})
	h.AddComment(Comment{ID: "c2", Text: "second"})
	h.AddComment(Comment{ID: "c3", Text: "third"})

	require.NoError(t, h.EditComment("c2", "edited"))
	c, err := h.Comment("c2")
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Text)

	require.NoError(t, h.RemoveComment("c2"))
	require.Len(t, h.Comments, 2)
	assert.Equal(t, "c1", h.Comments[0].ID)
	assert.Equal(t, "c3", h.Comments[1].ID)

	assert.ErrorIs(t, h.EditComment("c2", "x"), common.ErrorNotFound)
	assert.ErrorIs(t, h.RemoveComment("missing"), common.ErrorNotFound)
	_, err = h.Comment("missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
