package core_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hcf/internal/domain"
	"hcf/internal/source"
)

// mockSource is an in-memory content source.
type mockSource struct {
	mu      sync.Mutex
	items   map[int]*domain.RemoteItem
	files   map[int][]domain.RemoteFile
	urls    map[int]string // by file ID
	itemErr map[int]error
}

func newMockSource() *mockSource {
	return &mockSource{
		items:   make(map[int]*domain.RemoteItem),
		files:   make(map[int][]domain.RemoteFile),
		urls:    make(map[int]string),
		itemErr: make(map[int]error),
	}
}

func (m *mockSource) ID() string   { return "mock" }
func (m *mockSource) Name() string { return "Mock Source" }

func (m *mockSource) Search(ctx context.Context, q source.SearchQuery) (source.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []domain.RemoteItem
	for _, item := range m.items {
		if q.ClassID != 0 && item.ClassID != q.ClassID {
			continue
		}
		if strings.Contains(strings.ToLower(item.Name), strings.ToLower(q.Query)) {
			items = append(items, *item)
		}
	}
	return source.SearchResult{Items: items, TotalCount: len(items), PageSize: q.PageSize}, nil
}

func (m *mockSource) GetItem(ctx context.Context, id int) (*domain.RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.itemErr[id]; err != nil {
		return nil, err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	cp := *item
	cp.LatestFiles = append([]domain.RemoteFile(nil), m.files[id]...)
	return &cp, nil
}

func (m *mockSource) GetFiles(ctx context.Context, id int) ([]domain.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return nil, domain.ErrItemNotFound
	}
	return append([]domain.RemoteFile(nil), m.files[id]...), nil
}

func (m *mockSource) GetDownloadURL(ctx context.Context, id, fileID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.urls[fileID]
	if !ok {
		return "", domain.ErrNoDownloadURL
	}
	return u, nil
}

func (m *mockSource) AddItem(id int, name string, classID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = &domain.RemoteItem{ID: id, Name: name, ClassID: classID}
}

// AddFile publishes a file for an item, served by srv at /files/<fileName>.
func (m *mockSource) AddFile(id int, f domain.RemoteFile, srv *contentServer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if srv != nil {
		m.urls[f.ID] = srv.URL(f.FileName)
	}
	m.files[id] = append(m.files[id], f)
}

func (m *mockSource) SetItemError(id int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemErr[id] = err
}

// contentServer serves file bodies by name.
type contentServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies map[string][]byte
}

func newContentServer(t *testing.T) *contentServer {
	t.Helper()
	cs := &contentServer{bodies: make(map[string][]byte)}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		body, ok := cs.bodies[strings.TrimPrefix(r.URL.Path, "/files/")]
		cs.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *contentServer) Put(name string, body []byte) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.bodies[name] = body
}

func (cs *contentServer) Delete(name string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.bodies, name)
}

func (cs *contentServer) URL(name string) string {
	return cs.Server.URL + "/files/" + name
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// publish serves body under fileName and adds it as a file of item id.
func publish(m *mockSource, srv *contentServer, id, fileID int, fileName, date string, body []byte) {
	srv.Put(fileName, body)
	m.AddFile(id, domain.RemoteFile{
		ID:         fileID,
		FileName:   fileName,
		FileDate:   date,
		FileLength: int64(len(body)),
		MD5:        md5Hex(body),
	}, srv)
}
