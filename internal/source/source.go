package source

import (
	"context"

	"hcf/internal/domain"
)

// Sort fields understood by the remote search endpoint.
const (
	SortFeatured      = 1
	SortPopularity    = 2
	SortLastUpdated   = 3
	SortName          = 4
	SortAuthor        = 5
	SortTotalDownload = 6
)

// SearchQuery contains parameters for searching content.
type SearchQuery struct {
	Query     string
	ClassID   int // 0 searches every category
	Page      int // zero-based
	PageSize  int
	SortField int
	SortOrder string // "asc" or "desc"
}

// SearchResult contains paginated search results.
type SearchResult struct {
	Items      []domain.RemoteItem
	TotalCount int // Total results available (0 if unknown)
	Page       int
	PageSize   int
}

// Pages returns the number of pages needed for TotalCount.
func (r SearchResult) Pages() int {
	if r.PageSize <= 0 || r.TotalCount <= 0 {
		return 1
	}
	return (r.TotalCount + r.PageSize - 1) / r.PageSize
}

// ContentSource is a remote catalogue of installable content.
type ContentSource interface {
	ID() string
	Name() string

	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
	GetItem(ctx context.Context, contentID int) (*domain.RemoteItem, error)
	GetFiles(ctx context.Context, contentID int) ([]domain.RemoteFile, error)
	GetDownloadURL(ctx context.Context, contentID, fileID int) (string, error)
}
