package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelImageURLPriority(t *testing.T) {
	tests := []struct {
		name   string
		recipe Recipe
		want   string
	}{
		{
			name:   "pin url wins",
			recipe: Recipe{SourceURL: "https://www.pinterest.com/pin/1/", ImageURL: "https://img.example/a.jpg"},
			want:   "https://www.pinterest.com/pin/1/",
		},
		{
			name:   "plain source url",
			recipe: Recipe{SourceURL: "https://blog.example/wings", ImageURL: "https://img.example/a.jpg"},
			want:   "https://blog.example/wings",
		},
		{
			name:   "pinimg source falls through to image",
			recipe: Recipe{SourceURL: "https://i.pinimg.com/x.jpg", ImageURL: "https://img.example/a.jpg"},
			want:   "https://img.example/a.jpg",
		},
		{
			name:   "nothing usable",
			recipe: Recipe{SourceURL: "ftp://x", ImageURL: "data:abc"},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.recipe.ModelImageURL())
		})
	}
}

func TestRunSummaryString(t *testing.T) {
	var s RunSummary
	s.Add(IngestReport{Success: true, TotalRecipes: 3, RowsProcessed: 4, Upsert: UpsertResult{Succeeded: 2, Failed: 1}})
	s.Add(IngestReport{Success: false, Errors: []string{"parse export a.csv: bad"}})

	assert.Equal(t, "1 of 2 files processed, 3 recipes from 4 rows, 2 errors", s.String())
}

func TestRemoteStoreErrorMessage(t *testing.T) {
	err := &RemoteStoreError{Op: "create page", Status: 400, Message: "validation failed"}
	assert.Equal(t, "create page: status 400: validation failed", err.Error())

	cause := errors.New("connection refused")
	wrapped := &RemoteStoreError{Op: "query database", Err: cause}
	assert.ErrorIs(t, wrapped, cause)
}
