package content_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/content"
	"worksim/internal/kernel"
)

func newKernel(seed int64) *kernel.Kernel {
	return kernel.New(seed, config.Default().Temporal)
}

func TestTemplatesCoverEveryKind(t *testing.T) {
	tpl := content.Templates{K: newKernel(1)}
	ctx := context.Background()

	empty, err := tpl.Synthesize(ctx, content.Request{Kind: content.TaskDescription, Context: map[string]string{"complexity": content.Empty}})
	require.NoError(t, err)
	assert.Empty(t, empty)

	detailed, err := tpl.Synthesize(ctx, content.Request{Kind: content.TaskDescription, Context: map[string]string{"complexity": content.Detailed}})
	require.NoError(t, err)
	assert.NotContains(t, detailed, "{")

	comment, err := tpl.Synthesize(ctx, content.Request{Kind: content.Comment, Context: map[string]string{"mention": "Ada"}})
	require.NoError(t, err)
	assert.NotEmpty(t, comment)
	assert.NotContains(t, comment, "{person}")

	update, err := tpl.Synthesize(ctx, content.Request{Kind: content.StatusUpdate, Context: map[string]string{"status": "off_track"}})
	require.NoError(t, err)
	assert.NotEmpty(t, update)

	brief, err := tpl.Synthesize(ctx, content.Request{Kind: content.ProjectBrief, Context: map[string]string{
		"project": "Apollo", "team": "Design", "owner": "Ada Lovelace", "start_date": "2025-08-01",
	}})
	require.NoError(t, err)
	assert.Contains(t, brief, "Apollo")
	assert.Contains(t, brief, "Ada Lovelace")
	assert.NotContains(t, brief, "{")

	_, err = tpl.Synthesize(ctx, content.Request{Kind: "poem"})
	assert.ErrorIs(t, err, content.ErrUnknownKind)
}

func TestTemplatesAreReproducible(t *testing.T) {
	render := func() []string {
		tpl := content.Templates{K: newKernel(7)}
		var out []string
		for i := 0; i < 20; i++ {
			s, err := tpl.Synthesize(context.Background(), content.Request{Kind: content.TaskDescription, Context: map[string]string{"complexity": content.Detailed}})
			require.NoError(t, err)
			out = append(out, s)
		}
		return out
	}
	assert.Equal(t, render(), render())
}

type stubSynth struct {
	out   string
	err   error
	calls int
}

func (s *stubSynth) Synthesize(context.Context, content.Request) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestResilientFallsBack(t *testing.T) {
	primary := &stubSynth{err: errors.New("connection refused")}
	r := &content.Resilient{
		Primary:     primary,
		Fallback:    content.Templates{K: newKernel(3)},
		Log:         zerolog.New(io.Discard),
		MaxFailures: 2,
	}
	req := content.Request{Kind: content.Comment}
	for i := 0; i < 4; i++ {
		out, err := r.Synthesize(context.Background(), req)
		require.NoError(t, err)
		assert.NotEmpty(t, out)
	}
	assert.Equal(t, 2, primary.calls)
	assert.True(t, r.Disabled())
}

func TestResilientPrefersPrimaryAndKeepsStreamAligned(t *testing.T) {
	primary := &stubSynth{out: "  shipped it  "}
	withPrimary := &content.Resilient{Primary: primary, Fallback: content.Templates{K: newKernel(9)}, Log: zerolog.New(io.Discard)}
	plainKernel := newKernel(9)
	plain := &content.Resilient{Fallback: content.Templates{K: plainKernel}, Log: zerolog.New(io.Discard)}

	out, err := withPrimary.Synthesize(context.Background(), content.Request{Kind: content.Comment})
	require.NoError(t, err)
	assert.Equal(t, "shipped it", out)
	_, err = plain.Synthesize(context.Background(), content.Request{Kind: content.Comment})
	require.NoError(t, err)

	// both kernels consumed the same draws
	a := withPrimary.Fallback.(content.Templates).K.Float64()
	b := plainKernel.Float64()
	assert.Equal(t, a, b)
}

func TestOllamaGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": " Reviewed the PR. \n"})
	}))
	defer srv.Close()

	o := content.NewOllama(srv.URL, "llama3.2:1b", 0)
	out, err := o.Synthesize(context.Background(), content.Request{Kind: content.Comment, Context: map[string]string{"name": "Fix login", "author": "Ada"}})
	require.NoError(t, err)
	assert.Equal(t, "Reviewed the PR.", out)
	assert.Equal(t, "llama3.2:1b", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.True(t, strings.Contains(got["prompt"].(string), "Fix login"))

	_, err = o.Synthesize(context.Background(), content.Request{Kind: content.ProjectBrief})
	assert.ErrorIs(t, err, content.ErrUnsupported)
}

func TestOllamaStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := content.NewOllama(srv.URL, "missing", 0).Synthesize(context.Background(), content.Request{Kind: content.StatusUpdate})
	var se *content.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestNewOllamaBuildsClient(t *testing.T) {
	o := content.NewOllama("http://127.0.0.1:11434", "m", 3*time.Second)
	require.NotNil(t, o.HTTPClient)
	assert.Equal(t, 3*time.Second, o.HTTPClient.Timeout)

	client := o.HTTPClient
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()
	o.Host = srv.URL
	require.NoError(t, o.Ping(context.Background()))
	assert.Same(t, client, o.HTTPClient)
}
