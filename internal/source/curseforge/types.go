package curseforge

import "time"

// CurseForge API v1 response types
// API docs: https://docs.curseforge.com/rest-api/

// APIResponse wraps all CurseForge API responses
type APIResponse[T any] struct {
	Data T `json:"data"`
}

// PaginatedResponse wraps paginated CurseForge API responses
type PaginatedResponse[T any] struct {
	Data       T          `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains pagination info from CurseForge API
type Pagination struct {
	Index       int `json:"index"`
	PageSize    int `json:"pageSize"`
	ResultCount int `json:"resultCount"`
	TotalCount  int `json:"totalCount"`
}

// Mod is a content item as returned by the API
type Mod struct {
	ID            int       `json:"id"`
	GameID        int       `json:"gameId"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Links         ModLinks  `json:"links"`
	Summary       string    `json:"summary"`
	DownloadCount int64     `json:"downloadCount"`
	ClassID       int       `json:"classId"`
	Authors       []Author  `json:"authors"`
	Logo          *ModAsset `json:"logo"`
	MainFileID    int       `json:"mainFileId"`
	LatestFiles   []File    `json:"latestFiles"`
	DateModified  time.Time `json:"dateModified"`
}

// ModLinks contains URLs associated with a mod
type ModLinks struct {
	WebsiteURL string `json:"websiteUrl"`
}

// Author represents a mod author
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ModAsset represents an image asset (logo, screenshot)
type ModAsset struct {
	ID           int    `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	URL          string `json:"url"`
}

// File represents a downloadable file. FileDate is kept verbatim so it can be
// stored in the registry exactly as the API reported it.
type File struct {
	ID          int        `json:"id"`
	ModID       int        `json:"modId"`
	IsAvailable bool       `json:"isAvailable"`
	DisplayName string     `json:"displayName"`
	FileName    string     `json:"fileName"`
	ReleaseType int        `json:"releaseType"` // 1=Release, 2=Beta, 3=Alpha
	FileDate    string     `json:"fileDate"`
	FileLength  int64      `json:"fileLength"`
	DownloadURL string     `json:"downloadUrl"`
	Hashes      []FileHash `json:"hashes"`
}

// FileHash contains hash info for a file
type FileHash struct {
	Value string `json:"value"`
	Algo  int    `json:"algo"` // 1=SHA1, 2=MD5
}

// HashAlgoMD5 identifies an MD5 entry in File.Hashes
const HashAlgoMD5 = 2

// Game represents a game from the CurseForge API
type Game struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Category is a CurseForge category; classes are categories with IsClass set.
type Category struct {
	ID      int    `json:"id"`
	GameID  int    `json:"gameId"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	IsClass bool   `json:"isClass"`
	ClassID int    `json:"classId"`
}

// StringDownloadURL is the response for the download URL endpoint
type StringDownloadURL struct {
	Data string `json:"data"`
}

// Release types
const (
	ReleaseTypeRelease = 1
	ReleaseTypeBeta    = 2
	ReleaseTypeAlpha   = 3
)
