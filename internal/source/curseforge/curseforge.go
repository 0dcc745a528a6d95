package curseforge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"hcf/internal/domain"
	"hcf/internal/source"
)

// GameName is the CurseForge game this tool manages content for.
const GameName = "Hytale"

// CurseForge implements source.ContentSource for the Hytale game.
type CurseForge struct {
	client      *Client
	gameName    string
	cdnFallback bool

	gameID int // resolved lazily from gameName
	gameMu sync.Mutex
}

// Option configures a CurseForge source.
type Option func(*CurseForge)

// WithGameID skips the /games lookup.
func WithGameID(id int) Option {
	return func(c *CurseForge) { c.gameID = id }
}

// WithCDNFallback enables building edge CDN URLs when the API withholds a download URL.
func WithCDNFallback(enabled bool) Option {
	return func(c *CurseForge) { c.cdnFallback = enabled }
}

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(c *CurseForge) { c.client.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// New creates a new CurseForge source
func New(httpClient *http.Client, apiKey string, opts ...Option) *CurseForge {
	c := &CurseForge{
		client:      NewClient(httpClient, apiKey),
		gameName:    GameName,
		cdnFallback: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the source identifier
func (c *CurseForge) ID() string {
	return "curseforge"
}

// Name returns the display name
func (c *CurseForge) Name() string {
	return "CurseForge"
}

// AuthURL is where API keys are issued.
func (c *CurseForge) AuthURL() string {
	return "https://console.curseforge.com/"
}

// SetAPIKey sets the API key for authentication
func (c *CurseForge) SetAPIKey(key string) {
	c.client.SetAPIKey(key)
}

// IsAuthenticated returns true if an API key is configured
func (c *CurseForge) IsAuthenticated() bool {
	return c.client.IsAuthenticated()
}

// GameID resolves the numeric game ID by name. The result is cached.
func (c *CurseForge) GameID(ctx context.Context) (int, error) {
	c.gameMu.Lock()
	defer c.gameMu.Unlock()

	if c.gameID != 0 {
		return c.gameID, nil
	}

	games, err := c.client.GetGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving game %q: %w", c.gameName, err)
	}

	want := strings.ToLower(c.gameName)
	for _, g := range games {
		if strings.ToLower(g.Name) == want || strings.ToLower(g.Slug) == want {
			c.gameID = g.ID
			log.Debug().Int("game_id", g.ID).Str("game", g.Name).Msg("resolved curseforge game")
			return g.ID, nil
		}
	}

	return 0, fmt.Errorf("%w: game %q not listed by CurseForge", domain.ErrItemNotFound, c.gameName)
}

// Search finds content matching the query.
func (c *CurseForge) Search(ctx context.Context, query source.SearchQuery) (source.SearchResult, error) {
	gameID, err := c.GameID(ctx)
	if err != nil {
		return source.SearchResult{}, err
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	sortField := query.SortField
	if sortField == 0 {
		sortField = source.SortPopularity
	}
	sortOrder := query.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	mods, pagination, err := c.client.SearchMods(ctx, SearchParams{
		GameID:    gameID,
		Query:     query.Query,
		ClassID:   query.ClassID,
		SortField: sortField,
		SortOrder: sortOrder,
		PageSize:  pageSize,
		Index:     query.Page * pageSize,
	})
	if err != nil {
		return source.SearchResult{}, err
	}

	items := make([]domain.RemoteItem, len(mods))
	for i, m := range mods {
		items[i] = modToDomain(m)
	}

	return source.SearchResult{
		Items:      items,
		TotalCount: pagination.TotalCount,
		Page:       query.Page,
		PageSize:   pageSize,
	}, nil
}

// GetItem retrieves a single item
func (c *CurseForge) GetItem(ctx context.Context, contentID int) (*domain.RemoteItem, error) {
	data, err := c.client.GetMod(ctx, contentID)
	if err != nil {
		return nil, err
	}

	item := modToDomain(*data)
	return &item, nil
}

// GetFiles returns the downloadable files of an item
func (c *CurseForge) GetFiles(ctx context.Context, contentID int) ([]domain.RemoteFile, error) {
	files, err := c.client.GetModFiles(ctx, contentID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RemoteFile, len(files))
	for i, f := range files {
		out[i] = fileToDomain(f)
	}
	return out, nil
}

// GetDownloadURL asks the API for a file's download URL. When the API
// withholds it and the CDN fallback is enabled, the edge CDN path is built
// from the file's metadata instead.
func (c *CurseForge) GetDownloadURL(ctx context.Context, contentID, fileID int) (string, error) {
	u, err := c.client.GetDownloadURL(ctx, contentID, fileID)
	if err == nil && u != "" {
		return u, nil
	}
	if err != nil && (errors.Is(err, domain.ErrAuthRequired) || ctx.Err() != nil) {
		return "", err
	}
	if !c.cdnFallback {
		if err != nil {
			return "", err
		}
		return "", domain.ErrNoDownloadURL
	}

	log.Debug().Err(err).Int("content_id", contentID).Int("file_id", fileID).Msg("falling back to edge CDN")

	f, ferr := c.client.GetModFile(ctx, contentID, fileID)
	if ferr != nil {
		return "", errors.Join(domain.ErrNoDownloadURL, ferr)
	}
	if edge := EdgeURL(f.ID, f.FileName); edge != "" {
		return edge, nil
	}
	return "", domain.ErrNoDownloadURL
}

// Classes lists the top-level content classes CurseForge defines for the game,
// ordered by class ID.
func (c *CurseForge) Classes(ctx context.Context) ([]Category, error) {
	gameID, err := c.GameID(ctx)
	if err != nil {
		return nil, err
	}

	all, err := c.client.GetCategories(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var classes []Category
	for _, cat := range all {
		if cat.IsClass {
			classes = append(classes, cat)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

// modToDomain converts a CurseForge Mod to domain.RemoteItem
func modToDomain(data Mod) domain.RemoteItem {
	authors := make([]string, 0, len(data.Authors))
	for _, a := range data.Authors {
		authors = append(authors, a.Name)
	}

	var thumb string
	if data.Logo != nil {
		thumb = data.Logo.ThumbnailURL
	}

	var modified string
	if !data.DateModified.IsZero() {
		modified = data.DateModified.Format("2006-01-02")
	}

	files := make([]domain.RemoteFile, len(data.LatestFiles))
	for i, f := range data.LatestFiles {
		files[i] = fileToDomain(f)
	}

	return domain.RemoteItem{
		ID:            data.ID,
		Name:          data.Name,
		Summary:       data.Summary,
		ClassID:       data.ClassID,
		Authors:       authors,
		DownloadCount: data.DownloadCount,
		WebsiteURL:    data.Links.WebsiteURL,
		ThumbnailURL:  thumb,
		DateModified:  modified,
		LatestFiles:   files,
	}
}

func fileToDomain(f File) domain.RemoteFile {
	var md5 string
	for _, h := range f.Hashes {
		if h.Algo == HashAlgoMD5 {
			md5 = h.Value
		}
	}
	return domain.RemoteFile{
		ID:          f.ID,
		FileName:    f.FileName,
		DisplayName: f.DisplayName,
		FileDate:    f.FileDate,
		FileLength:  f.FileLength,
		DownloadURL: f.DownloadURL,
		MD5:         md5,
	}
}
