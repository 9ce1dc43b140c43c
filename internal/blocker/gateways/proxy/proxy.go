// Package proxy provides the request interception boundary: an HTTP forward
// proxy that passes every outbound request through the classifier before it
// leaves. Allowed requests are forwarded (or tunneled for CONNECT); blocked
// requests are cancelled with 403 and never reach the network.
package proxy

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

const (
	dialTimeout     = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// RequestClassifier decides allow-or-block for one outbound request URL.
// The proxy handles all network protocol details - the classifier only sees URLs.
type RequestClassifier interface {
	Classify(rawURL string) domain.Verdict
}

// HTTPProxy implements the interception transport. It handles socket
// management and request plumbing while delegating the block decision to the
// classifier service.
type HTTPProxy struct {
	addr      string
	logger    log.Logger
	transport http.RoundTripper

	// Synchronization for graceful shutdown
	mu       sync.RWMutex
	running  bool
	server   *http.Server
	listener net.Listener
}

// NewHTTPProxy creates a new proxy transport instance.
func NewHTTPProxy(addr string, logger log.Logger) *HTTPProxy {
	return &HTTPProxy{
		addr:      addr,
		logger:    logger,
		transport: http.DefaultTransport,
	}
}

// Start binds the listen address and begins intercepting requests,
// classifying each through the provided classifier.
func (p *HTTPProxy) Start(ctx context.Context, classifier RequestClassifier) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("proxy already running")
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("failed to bind proxy socket on %s: %w", p.addr, err)
	}

	p.listener = ln
	p.server = &http.Server{
		Handler: &interceptHandler{
			classifier: classifier,
			transport:  p.transport,
			logger:     p.logger,
		},
	}
	p.running = true

	p.logger.Info(map[string]any{
		"transport": "http_proxy",
		"address":   p.addr,
	}, "Intercepting proxy started")

	go func() {
		if err := p.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			p.logger.Error(map[string]any{"error": err.Error()}, "Proxy serve failed")
		}
	}()

	// Honor context cancellation as a stop signal.
	go func() {
		<-ctx.Done()
		_ = p.Stop()
	}()

	return nil
}

// Stop gracefully shuts down the proxy.
func (p *HTTPProxy) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := p.server.Shutdown(ctx)
	if err != nil {
		p.logger.Warn(map[string]any{"error": err.Error()}, "Error during proxy shutdown")
	}

	p.logger.Info(map[string]any{
		"transport": "http_proxy",
		"address":   p.addr,
	}, "Intercepting proxy stopped")

	return err
}

// Address returns the network address the proxy is bound to.
func (p *HTTPProxy) Address() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.listener != nil {
		return p.listener.Addr().String()
	}
	return p.addr
}

// interceptHandler classifies and forwards individual proxy requests.
type interceptHandler struct {
	classifier RequestClassifier
	transport  http.RoundTripper
	logger     log.Logger
}

func (h *interceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodConnect {
		h.handleConnect(w, r)
		return
	}
	h.handleForward(w, r)
}

// handleForward proxies a plain HTTP request. Proxy clients send the absolute
// URL in the request line, which is exactly what the classifier consumes.
func (h *interceptHandler) handleForward(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.String()

	if v := h.classifier.Classify(rawURL); v.Blocked {
		h.reject(w, rawURL, v)
		return
	}

	out := r.Clone(r.Context())
	out.RequestURI = ""
	out.Header.Del("Proxy-Connection")

	resp, err := h.transport.RoundTrip(out)
	if err != nil {
		h.logger.Warn(map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		}, "Upstream request failed")
		http.Error(w, "upstream request failed", http.StatusBadGateway)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

// handleConnect classifies the tunnel target, then splices the connection.
// TLS targets only expose host:port, so the classifier sees the host as an
// https URL with no path.
func (h *interceptHandler) handleConnect(w http.ResponseWriter, r *http.Request) {
	rawURL := "https://" + r.Host

	if v := h.classifier.Classify(rawURL); v.Blocked {
		h.reject(w, rawURL, v)
		return
	}

	upstream, err := net.DialTimeout("tcp", r.Host, dialTimeout)
	if err != nil {
		h.logger.Warn(map[string]any{
			"host":  r.Host,
			"error": err.Error(),
		}, "Tunnel dial failed")
		http.Error(w, "tunnel dial failed", http.StatusBadGateway)
		return
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		_ = upstream.Close()
		http.Error(w, "hijacking unsupported", http.StatusInternalServerError)
		return
	}
	client, _, err := hj.Hijack()
	if err != nil {
		_ = upstream.Close()
		http.Error(w, "hijack failed", http.StatusInternalServerError)
		return
	}

	_, _ = client.Write([]byte("HTTP/1.1 200 Connection Established\r\n\r\n"))

	go splice(upstream, client)
	go splice(client, upstream)
}

// reject cancels a blocked request with 403 and names the matched rule.
func (h *interceptHandler) reject(w http.ResponseWriter, rawURL string, v domain.Verdict) {
	w.Header().Set("X-Blockd-Rule", v.Rule)
	w.Header().Set("X-Blockd-Match", v.Kind.String())
	http.Error(w, "request blocked", http.StatusForbidden)
}

func splice(dst io.WriteCloser, src io.ReadCloser) {
	defer func() { _ = dst.Close() }()
	defer func() { _ = src.Close() }()
	_, _ = io.Copy(dst, src)
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
