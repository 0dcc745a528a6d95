package curseforge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcf/internal/domain"
	"hcf/internal/source"
)

func TestCurseForge_ImplementsContentSource(t *testing.T) {
	var _ source.ContentSource = (*CurseForge)(nil)
}

func TestCurseForge_Identity(t *testing.T) {
	cf := New(nil, "")
	assert.Equal(t, "curseforge", cf.ID())
	assert.Equal(t, "CurseForge", cf.Name())
	assert.False(t, cf.IsAuthenticated())

	cf.SetAPIKey("k")
	assert.True(t, cf.IsAuthenticated())
}

func TestCurseForge_GameID_ResolvesByNameOnce(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v1/games", r.URL.Path)
		_, _ = w.Write([]byte(`{"data": [{"id": 432, "name": "Minecraft"}, {"id": 70216, "name": "Hytale", "slug": "hytale"}],
			"pagination": {"index": 0, "pageSize": 50, "totalCount": 2}}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL))

	id, err := cf.GameID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 70216, id)

	_, err = cf.GameID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCurseForge_GameID_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": 432, "name": "Minecraft"}], "pagination": {"totalCount": 1}}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL))
	_, err := cf.GameID(context.Background())
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCurseForge_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "70216", q.Get("gameId"))
		assert.Equal(t, "2", q.Get("sortField"))
		assert.Equal(t, "desc", q.Get("sortOrder"))
		assert.Equal(t, "10", q.Get("index"))

		_, _ = w.Write([]byte(`{
			"data": [
				{
					"id": 1001,
					"name": "Super Tool",
					"summary": "Does things",
					"classId": 9137,
					"downloadCount": 99,
					"authors": [{"name": "maker"}, {"name": "helper"}],
					"links": {"websiteUrl": "https://www.curseforge.com/hytale/mods/super-tool"},
					"logo": {"thumbnailUrl": "https://example.com/st.png"},
					"latestFiles": [
						{"id": 11, "fileName": "st-1.zip", "fileDate": "2024-01-01T00:00:00Z"},
						{"id": 12, "fileName": "st-2.zip", "fileDate": "2024-03-01T00:00:00Z"}
					],
					"dateModified": "2024-03-01T10:30:00Z"
				}
			],
			"pagination": {"index": 10, "pageSize": 10, "resultCount": 1, "totalCount": 11}
		}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL), WithGameID(70216))

	res, err := cf.Search(context.Background(), source.SearchQuery{Query: "tool", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	item := res.Items[0]
	assert.Equal(t, "Super Tool", item.Name)
	assert.Equal(t, []string{"maker", "helper"}, item.Authors)
	assert.Equal(t, "2024-03-01", item.DateModified)
	assert.Equal(t, "https://example.com/st.png", item.ThumbnailURL)

	latest, ok := domain.LatestFile(item.LatestFiles)
	require.True(t, ok)
	assert.Equal(t, 12, latest.ID)

	assert.Equal(t, 11, res.TotalCount)
	assert.Equal(t, 2, res.Pages())
}

func TestCurseForge_GetDownloadURL_FallsBackToEdge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/mods/1001/files/5012345/download-url":
			_, _ = w.Write([]byte(`{"data": null}`))
		case "/v1/mods/1001/files/5012345":
			_, _ = w.Write([]byte(`{"data": {"id": 5012345, "fileName": "SuperTool_v2.zip"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL))

	u, err := cf.GetDownloadURL(context.Background(), 1001, 5012345)
	require.NoError(t, err)
	assert.Equal(t, "https://edge.forgecdn.net/files/5012/345/SuperTool_v2.zip", u)
}

func TestCurseForge_GetDownloadURL_NoFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": ""}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL), WithCDNFallback(false))

	_, err := cf.GetDownloadURL(context.Background(), 1001, 5012345)
	assert.ErrorIs(t, err, domain.ErrNoDownloadURL)
}

func TestCurseForge_GetFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [{"id": 7, "fileName": "a.jar", "displayName": "A", "fileLength": 3, "downloadUrl": "https://x/a.jar"}],
			"pagination": {"totalCount": 1}}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL))

	files, err := cf.GetFiles(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, domain.RemoteFile{ID: 7, FileName: "a.jar", DisplayName: "A", FileLength: 3, DownloadURL: "https://x/a.jar"}, files[0])
}

func TestCurseForge_Classes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/categories", r.URL.Path)
		assert.Equal(t, "70216", r.URL.Query().Get("gameId"))
		_, _ = w.Write([]byte(`{"data": [
			{"id": 9184, "name": "Worlds", "isClass": true},
			{"id": 555, "name": "Adventure", "classId": 9137},
			{"id": 9137, "name": "Mods", "isClass": true}
		]}`))
	}))
	defer server.Close()

	cf := New(server.Client(), "k", WithBaseURL(server.URL), WithGameID(70216))
	classes, err := cf.Classes(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, 9137, classes[0].ID)
	assert.Equal(t, "Worlds", classes[1].Name)
}
