package telegram_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RecipeScanner/internal/infrastructure/telegram"
)

func TestPublishReportPostsForm(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := telegram.NewNotifier(srv.URL, "token", "42")
	require.NoError(t, n.PublishReport(context.Background(), "1 of 1 files processed"))

	assert.Equal(t, "/bottoken/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "1 of 1 files processed", gotText)
}

func TestPublishReportTruncatesLongMessages(t *testing.T) {
	var gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotText = r.PostForm.Get("text")
	}))
	defer srv.Close()

	n := telegram.NewNotifier(srv.URL, "token", "42")
	require.NoError(t, n.PublishReport(context.Background(), strings.Repeat("x", 5000)))
	assert.Len(t, []rune(gotText), 4096)
}

func TestPublishReportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := telegram.NewNotifier(srv.URL, "token", "42").PublishReport(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	err = telegram.NewNotifier(srv.URL, "", "42").PublishReport(context.Background(), "hi")
	assert.ErrorIs(t, err, telegram.ErrMisconfigured)
}
