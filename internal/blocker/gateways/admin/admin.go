// Package admin exposes the management HTTP API: the popup-equivalent surface
// that reads the persisted lists, appends domains to them, and reports the
// blocked counter and badge. List writes go straight to the persisted store,
// never through the classifier; the store's change notification brings the
// in-memory mirror up to date.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/common/utils"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

const shutdownTimeout = 5 * time.Second

// ListStore is the slice of the persisted store the admin API needs.
type ListStore interface {
	GetList(kind domain.ListKind) ([]string, error)
	PutList(kind domain.ListKind, domains []string) error
}

// CounterStats reports the in-memory counter and list cardinalities.
type CounterStats interface {
	BlockedCount() uint64
	Sizes() (whitelist, blacklist int)
}

// BadgeReader reads the current badge state.
type BadgeReader interface {
	Snapshot() (text, color string)
}

// CacheStats reports verdict cache metrics.
type CacheStats interface {
	Len() int
	Stats() (hits, misses, evictions uint64)
}

// Server is the admin HTTP listener.
type Server struct {
	addr   string
	store  ListStore
	stats  CounterStats
	badge  BadgeReader
	cache  CacheStats
	logger log.Logger

	mu       sync.RWMutex
	running  bool
	server   *http.Server
	listener net.Listener

	// addMu serializes list read-modify-write cycles so concurrent adds
	// to the same list cannot lose entries.
	addMu sync.Mutex
}

type Options struct {
	Addr   string
	Store  ListStore
	Stats  CounterStats
	Badge  BadgeReader
	Cache  CacheStats
	Logger log.Logger
}

func NewServer(opts Options) *Server {
	return &Server{
		addr:   opts.Addr,
		store:  opts.Store,
		stats:  opts.Stats,
		badge:  opts.Badge,
		cache:  opts.Cache,
		logger: opts.Logger,
	}
}

// Start binds the admin address and serves the API until Stop or ctx cancel.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("admin server already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind admin socket on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.server = &http.Server{Handler: s.routes()}
	s.running = true

	s.logger.Info(map[string]any{
		"address": s.addr,
	}, "Admin API started")

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error(map[string]any{"error": err.Error()}, "Admin serve failed")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	return nil
}

// Stop gracefully shuts down the admin server.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(map[string]any{"error": err.Error()}, "Error during admin shutdown")
	}

	s.logger.Info(map[string]any{"address": s.addr}, "Admin API stopped")
	return err
}

// Address returns the network address the admin server is bound to.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lists", s.handleGetLists)
	mux.HandleFunc("POST /api/lists/{kind}", s.handleAddDomain)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	return mux
}

func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	out := make(map[string][]string, 2)
	for _, kind := range []domain.ListKind{domain.ListWhitelist, domain.ListBlacklist} {
		domains, err := s.store.GetList(kind)
		if err != nil {
			s.logger.Error(map[string]any{
				"list":  kind.String(),
				"error": err.Error(),
			}, "Failed to read list")
			http.Error(w, "failed to read lists", http.StatusInternalServerError)
			return
		}
		out[kind.String()] = domains
	}
	writeJSON(w, http.StatusOK, out)
}

type addDomainRequest struct {
	Domain string `json:"domain"`
}

type addDomainResponse struct {
	Status string `json:"status"`
	Domain string `json:"domain,omitempty"`
}

// handleAddDomain appends a domain to the chosen list: trims whitespace,
// ignores empty input, and skips duplicates. Empty and duplicate submissions
// are no-ops, not errors.
func (s *Server) handleAddDomain(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseListKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, "unknown list", http.StatusNotFound)
		return
	}

	var req addDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Domain)
	if name == "" {
		writeJSON(w, http.StatusOK, addDomainResponse{Status: "ignored"})
		return
	}
	name = utils.CanonicalHostname(name)

	s.addMu.Lock()
	defer s.addMu.Unlock()

	domains, err := s.store.GetList(kind)
	if err != nil {
		s.logger.Error(map[string]any{
			"list":  kind.String(),
			"error": err.Error(),
		}, "Failed to read list")
		http.Error(w, "failed to read list", http.StatusInternalServerError)
		return
	}

	for _, d := range domains {
		if utils.CanonicalHostname(d) == name {
			writeJSON(w, http.StatusOK, addDomainResponse{Status: "unchanged", Domain: name})
			return
		}
	}

	domains = append(domains, name)
	if err := s.store.PutList(kind, domains); err != nil {
		s.logger.Error(map[string]any{
			"list":  kind.String(),
			"error": err.Error(),
		}, "Failed to write list")
		http.Error(w, "failed to write list", http.StatusInternalServerError)
		return
	}

	s.logger.Info(map[string]any{
		"list":   kind.String(),
		"domain": name,
	}, "Domain added")

	writeJSON(w, http.StatusCreated, addDomainResponse{Status: "added", Domain: name})
}

type statsResponse struct {
	BlockedCount  uint64     `json:"blockedCount"`
	WhitelistSize int        `json:"whitelistSize"`
	BlacklistSize int        `json:"blacklistSize"`
	Badge         badgeState `json:"badge"`
	Cache         cacheState `json:"cache"`
}

type badgeState struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type cacheState struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	wl, bl := s.stats.Sizes()
	text, color := s.badge.Snapshot()
	hits, misses, evictions := s.cache.Stats()

	writeJSON(w, http.StatusOK, statsResponse{
		BlockedCount:  s.stats.BlockedCount(),
		WhitelistSize: wl,
		BlacklistSize: bl,
		Badge:         badgeState{Text: text, Color: color},
		Cache: cacheState{
			Entries:   s.cache.Len(),
			Hits:      hits,
			Misses:    misses,
			Evictions: evictions,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
