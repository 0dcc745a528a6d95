package curseforge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/domain"
)

func TestClient_SearchMods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mods/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "70216", q.Get("gameId"))
		assert.Equal(t, "tool", q.Get("searchFilter"))
		assert.Equal(t, "9137", q.Get("classId"))
		assert.Equal(t, "2", q.Get("sortField"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		assert.Equal(t, "20", q.Get("pageSize"))
		assert.Equal(t, "40", q.Get("index"))
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{
					"id": 1001,
					"gameId": 70216,
					"name": "Super Tool",
					"summary": "Does things",
					"downloadCount": 1500,
					"classId": 9137,
					"authors": [{"id": 1, "name": "maker"}],
					"latestFiles": [],
					"dateModified": "2024-01-15T10:30:00Z"
				}
			],
			"pagination": {"index": 40, "pageSize": 20, "resultCount": 1, "totalCount": 41}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "test-api-key")
	client.baseURL = server.URL

	mods, pagination, err := client.SearchMods(context.Background(), SearchParams{
		GameID: 70216, Query: "tool", ClassID: 9137, SortField: 2, SortOrder: "desc", PageSize: 20, Index: 40,
	})
	require.NoError(t, err)
	require.Len(t, mods, 1)

	assert.Equal(t, 1001, mods[0].ID)
	assert.Equal(t, "Super Tool", mods[0].Name)
	assert.Equal(t, 9137, mods[0].ClassID)
	assert.Equal(t, "maker", mods[0].Authors[0].Name)
	assert.Equal(t, 41, pagination.TotalCount)
}

func TestClient_SearchMods_ClampsPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("pageSize"))
		assert.Empty(t, r.URL.Query().Get("classId"))
		_, _ = w.Write([]byte(`{"data": [], "pagination": {"totalCount": 0}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k")
	client.baseURL = server.URL

	_, _, err := client.SearchMods(context.Background(), SearchParams{GameID: 1, PageSize: 500})
	require.NoError(t, err)
}

func TestClient_GetGames_Paginates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("index") == "0" {
			_, _ = w.Write([]byte(`{"data": [{"id": 432, "name": "Minecraft", "slug": "minecraft"}],
				"pagination": {"index": 0, "pageSize": 1, "totalCount": 2}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": 70216, "name": "Hytale", "slug": "hytale"}],
			"pagination": {"index": 1, "pageSize": 1, "totalCount": 2}}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k")
	client.baseURL = server.URL

	games, err := client.GetGames(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 2)
	assert.Equal(t, 2, calls)
}

func TestClient_GetModFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mods/1001/files", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 5000001, "displayName": "Super Tool 2", "fileName": "SuperTool_v2.zip",
				 "fileDate": "2024-02-01T00:00:00.123Z", "fileLength": 2048, "downloadUrl": "https://cdn.example/st.zip"}
			],
			"pagination": {"index": 0, "pageSize": 50, "totalCount": 1}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k")
	client.baseURL = server.URL

	files, err := client.GetModFiles(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "2024-02-01T00:00:00.123Z", files[0].FileDate, "file date is kept verbatim")
	assert.Equal(t, int64(2048), files[0].FileLength)
}

func TestClient_GetDownloadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/mods/1001/files/5000001/download-url", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": "https://cdn.example/st.zip"}`))
	}))
	defer server.Close()

	client := NewClient(server.Client(), "k")
	client.baseURL = server.URL

	u, err := client.GetDownloadURL(context.Background(), 1001, 5000001)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/st.zip", u)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		apiKey string
		path   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, "k", "/v1/mods/1", domain.ErrAuthRequired},
		{"forbidden without key", http.StatusForbidden, "", "/v1/mods/1", domain.ErrAuthRequired},
		{"forbidden download", http.StatusForbidden, "k", "/v1/mods/1/files/2/download-url", domain.ErrNoDownloadURL},
		{"not found", http.StatusNotFound, "k", "/v1/mods/1", domain.ErrItemNotFound},
		{"server error", http.StatusBadGateway, "k", "/v1/mods/1", domain.ErrTransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.Client(), tt.apiKey)
			client.baseURL = server.URL

			var out StringDownloadURL
			err := client.doRequest(context.Background(), tt.path, &out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(nil, "k")
	client.baseURL = server.URL

	_, err := client.GetMod(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
}

func TestEdgeURL(t *testing.T) {
	assert.Equal(t, "https://edge.forgecdn.net/files/5012/345/SuperTool_v2.zip", EdgeURL(5012345, "SuperTool_v2.zip"))
	assert.Equal(t, "https://edge.forgecdn.net/files/4012/45/a%20b.jar", EdgeURL(4012045, "a b.jar"))
	assert.Equal(t, "", EdgeURL(1234, "short.jar"))
	assert.Equal(t, "", EdgeURL(5012345, ""))
}
