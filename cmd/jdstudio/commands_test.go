package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/dashboard"
	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/reveal"
)

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		want  string
	}{
		{"markup", "# Title\n**Bold** text\n* item\n---\n", "Title\nBold text\n• item\n"},
		{"blank input", "\n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeCommand(t, tt.stdin, "normalize")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestNormalizeCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jd.md")
	require.NoError(t, os.WriteFile(path, []byte("## About\n**We** ship"), 0o644))

	out, _, err := executeCommand(t, "", "normalize", path)
	require.NoError(t, err)
	assert.Equal(t, "About\nWe ship\n", out)

	_, _, err = executeCommand(t, "", "normalize", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestFormatCommand_JSON(t *testing.T) {
	raw := "1. About\n\n- Build APIs"
	out, _, err := executeCommand(t, raw, "format", "--role", "Engineer", "--json")
	require.NoError(t, err)

	var blocks []jdtext.Block
	require.NoError(t, json.Unmarshal([]byte(out), &blocks))
	assert.Equal(t, jdtext.Format(raw, "Engineer"), blocks)
}

func TestFormatCommand_Boxes(t *testing.T) {
	out, _, err := executeCommand(t, "1. About\n\n- Build APIs", "format", "-r", "Engineer")
	require.NoError(t, err)

	assert.Contains(t, out, "Role: Engineer")
	assert.Contains(t, out, "1. About")
	assert.Contains(t, out, "- Build APIs")
	assert.Equal(t, 2, strings.Count(out, "┌"))
}

func TestExportCommand_HTML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "jd.html")

	stdout, _, err := executeCommand(t, "# Backend Engineer\n**About** us", "export", "--html", "--title", "Backend Engineer", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote "+out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", doc.Find("title").Text())
	assert.Equal(t, 1, doc.Find("section.page").Length())
	assert.Contains(t, doc.Find("p.line").Text(), "About us")
	assert.NotContains(t, doc.Text(), "**")
}

func TestExportCommand_NothingToExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.html")

	_, _, err := executeCommand(t, "---\n", "export", "--html", "--out", out)
	assert.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestDashboardCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "dashboard", "--json")
	require.NoError(t, err)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, *dashboard.Default(), snap)

	out, _, err = executeCommand(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Selection ratio: 35.6%")
}

func TestGenerateCommand(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, backend.GeneratePath, r.URL.Path)
		assert.Equal(t, "Bearer cli-token", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jd":{"title":"Backend Engineer","fullJD":"# Backend Engineer\n\n1. About\n\n- Build APIs"}}`))
	}))
	defer srv.Close()
	t.Setenv("BACKEND_URL", srv.URL)
	t.Setenv(EnvToken, "cli-token")

	out, _, err := executeCommand(t, "", "generate",
		"--title", "Backend Engineer",
		"--location", "Pune",
		"--experience", "3 years",
		"--skill", "Go,SQL", "--skill", "Go",
	)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", got["title"])
	assert.Equal(t, float64(3), got["experience"])
	assert.Equal(t, []any{"Go", "SQL"}, got["skills"])
	assert.Contains(t, out, "Role: Backend Engineer")
	assert.Contains(t, out, "- Build APIs")
}

func TestGenerateCommand_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()
	t.Setenv("BACKEND_URL", srv.URL)

	t.Run("missing token", func(t *testing.T) {
		t.Setenv(EnvToken, "")
		_, _, err := executeCommand(t, "", "generate", "--title", "x", "--location", "y", "--skill", "Go")
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvToken)
	})

	t.Run("invalid form", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "generate", "--token", "t", "--title", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid job form")
	})

	t.Run("backend refusal", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "generate", "--token", "t", "--title", "x", "--location", "y", "--skill", "Go")
		var apiErr *backend.APICallError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "token expired", apiErr.Message)
	})

	t.Run("pdf must be a pdf", func(t *testing.T) {
		_, _, err := executeCommand(t, "", "generate", "--token", "t", "--pdf", "role.docx")
		assert.ErrorIs(t, err, backend.ErrNotPDF)
	})
}

func TestRevealCommand_RejectsBadInterval(t *testing.T) {
	_, _, err := executeCommand(t, "text", "reveal", "--interval", "0s")
	assert.ErrorIs(t, err, reveal.ErrInvalidInterval)
}

func TestRevealCommand_PDFWithFileArg(t *testing.T) {
	_, _, err := executeCommand(t, "", "reveal", "--pdf", "a.pdf", "b.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pdf")
}

func TestServeCommand_Wiring(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:5000")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	require.NoError(t, serveCmd.Flags().Set("port", "9191"))

	srv, err := newServer(serveCmd)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeCommand_BadConfig(t *testing.T) {
	t.Setenv("BACKEND_URL", "not a url")
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	_, err := newServer(serveCmd)
	assert.Error(t, err)
}
