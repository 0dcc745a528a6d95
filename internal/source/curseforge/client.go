package curseforge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
)

const (
	defaultBaseURL = "https://api.curseforge.com"
	edgeBaseURL    = "https://edge.forgecdn.net/files"
	maxPageSize    = 50
)

// Client wraps the CurseForge REST API v1
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new CurseForge API client
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
	}
}

// SetAPIKey sets the API key for authentication
func (c *Client) SetAPIKey(key string) {
	c.apiKey = key
}

// IsAuthenticated returns true if an API key is configured
func (c *Client) IsAuthenticated() bool {
	return c.apiKey != ""
}

// doRequest performs an authenticated GET and decodes the JSON body into result.
// Network failures and unexpected statuses wrap domain.ErrTransportFailure.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	log.Debug().Str("path", path).Msg("curseforge request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: CurseForge API key required", domain.ErrAuthRequired)
	case http.StatusForbidden:
		if c.apiKey == "" {
			return fmt.Errorf("%w: CurseForge API key required", domain.ErrAuthRequired)
		}
		// 403 on the download-url endpoint means the author disabled third-party distribution
		if strings.HasSuffix(path, "/download-url") {
			return fmt.Errorf("%w: author has disabled third-party downloads", domain.ErrNoDownloadURL)
		}
		return fmt.Errorf("%w: access denied (check API key is valid)", domain.ErrAuthRequired)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 10*1024))
		return fmt.Errorf("%w: API error (status %d): %s", domain.ErrTransportFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %w", domain.ErrTransportFailure, err)
	}

	return nil
}

// GetGames fetches all available games with pagination
func (c *Client) GetGames(ctx context.Context) ([]Game, error) {
	var allGames []Game
	index := 0

	for {
		params := url.Values{}
		params.Set("pageSize", strconv.Itoa(maxPageSize))
		params.Set("index", strconv.Itoa(index))

		var resp PaginatedResponse[[]Game]
		if err := c.doRequest(ctx, "/v1/games?"+params.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("getting games: %w", err)
		}

		allGames = append(allGames, resp.Data...)

		p := resp.Pagination
		if len(resp.Data) == 0 || p.PageSize == 0 || p.Index+p.PageSize >= p.TotalCount {
			break
		}

		index += p.PageSize
	}

	return allGames, nil
}

// SearchParams are the query parameters of /v1/mods/search.
type SearchParams struct {
	GameID    int
	Query     string
	ClassID   int
	SortField int
	SortOrder string
	PageSize  int
	Index     int
}

// SearchMods searches for mods with the given parameters
func (c *Client) SearchMods(ctx context.Context, p SearchParams) ([]Mod, *Pagination, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}

	params := url.Values{}
	params.Set("gameId", strconv.Itoa(p.GameID))
	if p.Query != "" {
		params.Set("searchFilter", p.Query)
	}
	if p.ClassID > 0 {
		params.Set("classId", strconv.Itoa(p.ClassID))
	}
	if p.SortField > 0 {
		params.Set("sortField", strconv.Itoa(p.SortField))
	}
	if p.SortOrder != "" {
		params.Set("sortOrder", p.SortOrder)
	}
	params.Set("pageSize", strconv.Itoa(p.PageSize))
	params.Set("index", strconv.Itoa(p.Index))

	var resp PaginatedResponse[[]Mod]
	if err := c.doRequest(ctx, "/v1/mods/search?"+params.Encode(), &resp); err != nil {
		return nil, nil, fmt.Errorf("searching mods: %w", err)
	}

	return resp.Data, &resp.Pagination, nil
}

// GetMod fetches a single mod by ID
func (c *Client) GetMod(ctx context.Context, modID int) (*Mod, error) {
	var resp APIResponse[Mod]
	if err := c.doRequest(ctx, fmt.Sprintf("/v1/mods/%d", modID), &resp); err != nil {
		return nil, fmt.Errorf("getting mod: %w", err)
	}
	return &resp.Data, nil
}

// GetModFiles fetches files for a mod
func (c *Client) GetModFiles(ctx context.Context, modID int) ([]File, error) {
	var resp PaginatedResponse[[]File]
	if err := c.doRequest(ctx, fmt.Sprintf("/v1/mods/%d/files", modID), &resp); err != nil {
		return nil, fmt.Errorf("getting mod files: %w", err)
	}
	return resp.Data, nil
}

// GetModFile fetches a specific file for a mod
func (c *Client) GetModFile(ctx context.Context, modID, fileID int) (*File, error) {
	var resp APIResponse[File]
	if err := c.doRequest(ctx, fmt.Sprintf("/v1/mods/%d/files/%d", modID, fileID), &resp); err != nil {
		return nil, fmt.Errorf("getting mod file: %w", err)
	}
	return &resp.Data, nil
}

// GetDownloadURL fetches the download URL for a mod file
func (c *Client) GetDownloadURL(ctx context.Context, modID, fileID int) (string, error) {
	var resp StringDownloadURL
	if err := c.doRequest(ctx, fmt.Sprintf("/v1/mods/%d/files/%d/download-url", modID, fileID), &resp); err != nil {
		return "", fmt.Errorf("getting download URL: %w", err)
	}
	return resp.Data, nil
}

// GetCategories fetches categories for a game
func (c *Client) GetCategories(ctx context.Context, gameID int) ([]Category, error) {
	var resp APIResponse[[]Category]
	if err := c.doRequest(ctx, fmt.Sprintf("/v1/categories?gameId=%d", gameID), &resp); err != nil {
		return nil, fmt.Errorf("getting categories: %w", err)
	}
	return resp.Data, nil
}

// EdgeURL builds the CDN path CurseForge serves files from:
// files/<first four digits>/<remaining digits>/<file name>.
// It returns "" when the file ID is too short or the name is unknown.
func EdgeURL(fileID int, fileName string) string {
	id := strconv.Itoa(fileID)
	if len(id) <= 4 || fileName == "" {
		return ""
	}
	rest := strings.TrimLeft(id[4:], "0")
	if rest == "" {
		rest = "0"
	}
	return fmt.Sprintf("%s/%s/%s/%s", edgeBaseURL, id[:4], rest, url.PathEscape(fileName))
}
