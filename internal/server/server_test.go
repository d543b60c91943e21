package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksim/internal/config"
	"worksim/internal/db"
	"worksim/internal/domain"
	"worksim/internal/engine"
	"worksim/internal/migrate"
	"worksim/internal/repo"
)

const testSecret = "test-secret"

type testServer struct {
	URL    string
	client *http.Client
	counts map[string]int
}

func newTestServer(t *testing.T, secret string, populate bool) *testServer {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, migrate.Migrate(ctx, conn))
	store := repo.New(conn)
	store.Log = zerolog.Nop()

	srv := &testServer{client: &http.Client{}}
	if populate {
		cfg := config.Default()
		cfg.Volumes = config.Volumes{
			Workspaces: 1, Users: 8, Teams: 2, Portfolios: 1, Goals: 2, Projects: 3,
			ProjectTemplates: 1, Tasks: 120, SubtaskRatio: 0.2, Tags: 4,
		}
		eng := engine.New(store, cfg)
		eng.Log = zerolog.Nop()
		eng.Now = func() time.Time { return time.Date(2026, 1, 7, 8, 0, 0, 0, time.UTC) }
		d, _, err := eng.Run(ctx, engine.Options{})
		require.NoError(t, err)
		srv.counts = d.Counts()
	}

	handler, err := New(Config{Store: store, BasePath: "/v0", Auth: AuthConfig{JWTSecret: secret}, Log: zerolog.Nop()})
	require.NoError(t, err)
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	hs := &http.Server{Handler: handler}
	go hs.Serve(ln)
	srv.URL = "http://" + ln.Addr().String()
	t.Cleanup(func() {
		_ = hs.Shutdown(context.Background())
		_ = conn.Close()
	})
	return srv
}

func (s *testServer) get(t *testing.T, path, token string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := s.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, data
}

func errorCode(t *testing.T, data []byte) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &env), string(data))
	return env.Error.Code
}

func TestHealthIsOpen(t *testing.T) {
	srv := newTestServer(t, testSecret, false)
	res, data := srv.get(t, "/v0/health", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestTablesRequireToken(t *testing.T) {
	srv := newTestServer(t, testSecret, true)

	res, data := srv.get(t, "/v0/tables", "")
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "unauthorized", errorCode(t, data))

	forged, err := SignToken("other-secret", "alice", time.Hour)
	require.NoError(t, err)
	res, data = srv.get(t, "/v0/tables", forged)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "invalid_credentials", errorCode(t, data))

	token, err := SignToken(testSecret, "alice", time.Hour)
	require.NoError(t, err)
	res, data = srv.get(t, "/v0/tables", token)
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))

	var tables []TableResponse
	require.NoError(t, json.Unmarshal(data, &tables))
	require.Len(t, tables, len(domain.Tables)+1)
	for _, tr := range tables[:len(domain.Tables)] {
		assert.Equal(t, srv.counts[tr.Table], tr.Rows, tr.Table)
	}
	last := tables[len(tables)-1]
	assert.Equal(t, domain.ProvenanceTable, last.Table)
	assert.Equal(t, len(domain.Tables), last.Rows)
}

func TestRowsArePaged(t *testing.T) {
	srv := newTestServer(t, "", true)
	total := srv.counts["tasks"]
	require.Greater(t, total, 60)

	res, data := srv.get(t, "/v0/tables/tasks/rows?limit=50", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var page RowsPage
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Len(t, page.Items, 50)
	require.NotNil(t, page.NextOffset)
	assert.Equal(t, 50, *page.NextOffset)
	assert.NotEmpty(t, page.Items[0]["gid"])

	res, data = srv.get(t, "/v0/tables/tasks/rows?limit=50&offset=50", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var second RowsPage
	require.NoError(t, json.Unmarshal(data, &second))
	assert.NotEqual(t, page.Items[0]["gid"], second.Items[0]["gid"])

	res, data = srv.get(t, "/v0/tables/tasks/rows?limit=500", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var all RowsPage
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all.Items, total)
	assert.Nil(t, all.NextOffset)
}

func TestUnknownTableIsNotFound(t *testing.T) {
	srv := newTestServer(t, "", false)
	res, data := srv.get(t, "/v0/tables/widgets/rows", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, data))
}

func TestProvenanceBeforeAnyRun(t *testing.T) {
	srv := newTestServer(t, "", false)
	res, data := srv.get(t, "/v0/provenance", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "not_found", errorCode(t, data))
}

func TestProvenanceAndChecksAfterRun(t *testing.T) {
	srv := newTestServer(t, "", true)

	res, data := srv.get(t, "/v0/provenance", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var prov ProvenanceResponse
	require.NoError(t, json.Unmarshal(data, &prov))
	assert.Len(t, prov.BatchID, 8)
	require.Len(t, prov.Tables, len(domain.Tables))
	assert.Equal(t, domain.Tables[0], prov.Tables[0].EntityType)
	assert.Equal(t, srv.counts[domain.Tables[0]], prov.Tables[0].RowCount)

	res, data = srv.get(t, "/v0/checks", "")
	require.Equal(t, http.StatusOK, res.StatusCode, string(data))
	var checks ChecksResponse
	require.NoError(t, json.Unmarshal(data, &checks))
	assert.True(t, checks.Passed, string(data))
	assert.NotEmpty(t, checks.Checks)
}

func TestOpenAPIAdvertisesBearerAuth(t *testing.T) {
	srv := newTestServer(t, testSecret, false)
	res, data := srv.get(t, "/v0/openapi.json", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, string(data), "bearerAuth")
	assert.Contains(t, doc["paths"], "/v0/tables/{table}/rows")
}

func TestSignTokenNeedsSecretAndSubject(t *testing.T) {
	_, err := SignToken("", "alice", time.Hour)
	assert.Error(t, err)
	_, err = SignToken(testSecret, "", time.Hour)
	assert.Error(t, err)

	token, err := SignToken(testSecret, "alice", 0)
	require.NoError(t, err)
	p, err := authenticateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Subject)
}
