package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

// memStore is an in-memory ListStore that records writes.
type memStore struct {
	lists  map[domain.ListKind][]string
	puts   int
	getErr error
	putErr error
}

func newMemStore() *memStore {
	return &memStore{lists: map[domain.ListKind][]string{
		domain.ListWhitelist: {},
		domain.ListBlacklist: {},
	}}
}

func (s *memStore) GetList(kind domain.ListKind) ([]string, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return append([]string(nil), s.lists[kind]...), nil
}

func (s *memStore) PutList(kind domain.ListKind, domains []string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.lists[kind] = append([]string(nil), domains...)
	return nil
}

type fakeStats struct {
	count  uint64
	wl, bl int
}

func (f *fakeStats) BlockedCount() uint64 { return f.count }
func (f *fakeStats) Sizes() (int, int)    { return f.wl, f.bl }

type fakeBadge struct{ text, color string }

func (f *fakeBadge) Snapshot() (string, string) { return f.text, f.color }

type fakeCache struct {
	entries               int
	hits, misses, evicted uint64
}

func (f *fakeCache) Len() int { return f.entries }
func (f *fakeCache) Stats() (uint64, uint64, uint64) {
	return f.hits, f.misses, f.evicted
}

func newTestServer(store *memStore) *Server {
	return NewServer(Options{
		Addr:   ":0",
		Store:  store,
		Stats:  &fakeStats{count: 7, wl: 1, bl: 2},
		Badge:  &fakeBadge{text: "7", color: "#FF0000"},
		Cache:  &fakeCache{entries: 3, hits: 10, misses: 4, evicted: 1},
		Logger: log.NewNoopLogger(),
	})
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	s.routes().ServeHTTP(rr, req)
	return rr
}

func TestGetLists(t *testing.T) {
	store := newMemStore()
	store.lists[domain.ListWhitelist] = []string{"shop.example.com"}
	s := newTestServer(store)

	rr := doRequest(s, http.MethodGet, "/api/lists", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []string{"shop.example.com"}, got["whitelist"])
	assert.Empty(t, got["blacklist"])
}

func TestAddDomain(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)

	rr := doRequest(s, http.MethodPost, "/api/lists/whitelist", `{"domain":"  Shop.Example.com  "}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp addDomainResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "added", resp.Status)
	assert.Equal(t, "shop.example.com", resp.Domain, "domain is trimmed and canonicalized")

	assert.Equal(t, []string{"shop.example.com"}, store.lists[domain.ListWhitelist])
	assert.Equal(t, 1, store.puts)
}

func TestAddDomain_DuplicateIsNoOp(t *testing.T) {
	store := newMemStore()
	store.lists[domain.ListBlacklist] = []string{"bad.example.com"}
	s := newTestServer(store)

	rr := doRequest(s, http.MethodPost, "/api/lists/blacklist", `{"domain":"bad.example.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp addDomainResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "unchanged", resp.Status)

	// no store write, and the list still holds the domain exactly once
	assert.Equal(t, 0, store.puts)
	assert.Equal(t, []string{"bad.example.com"}, store.lists[domain.ListBlacklist])
}

func TestAddDomain_EmptyIsNoOp(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)

	for _, body := range []string{`{"domain":""}`, `{"domain":"   "}`, `{}`} {
		rr := doRequest(s, http.MethodPost, "/api/lists/whitelist", body)
		require.Equal(t, http.StatusOK, rr.Code, "body %s", body)

		var resp addDomainResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "ignored", resp.Status)
	}
	assert.Equal(t, 0, store.puts, "empty submissions must not write the store")
}

func TestAddDomain_UnknownList(t *testing.T) {
	s := newTestServer(newMemStore())
	rr := doRequest(s, http.MethodPost, "/api/lists/greylist", `{"domain":"a.example.com"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddDomain_BadBody(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)
	rr := doRequest(s, http.MethodPost, "/api/lists/whitelist", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, store.puts)
}

func TestAddDomain_ConcurrentAddsAllLand(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"domain":"host%d.example.com"}`, i)
			rr := doRequest(s, http.MethodPost, "/api/lists/blacklist", body)
			assert.Equal(t, http.StatusCreated, rr.Code)
		}(i)
	}
	wg.Wait()

	// no add may be lost to an interleaved read-modify-write
	assert.Len(t, store.lists[domain.ListBlacklist], n)
	assert.Equal(t, n, store.puts)
}

func TestAddDomain_StoreErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("boom")
	s := newTestServer(store)
	rr := doRequest(s, http.MethodPost, "/api/lists/whitelist", `{"domain":"a.example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	store = newMemStore()
	store.putErr = errors.New("boom")
	s = newTestServer(store)
	rr = doRequest(s, http.MethodPost, "/api/lists/whitelist", `{"domain":"a.example.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStats(t *testing.T) {
	s := newTestServer(newMemStore())

	rr := doRequest(s, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got statsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, uint64(7), got.BlockedCount)
	assert.Equal(t, 1, got.WhitelistSize)
	assert.Equal(t, 2, got.BlacklistSize)
	assert.Equal(t, "7", got.Badge.Text)
	assert.Equal(t, "#FF0000", got.Badge.Color)
	assert.Equal(t, 3, got.Cache.Entries)
	assert.Equal(t, uint64(10), got.Cache.Hits)
}
