package classifier

import (
	"context"
	"strconv"

	"github.com/VIJAY-mark/blockd/internal/blocker/common/log"
	"github.com/VIJAY-mark/blockd/internal/blocker/common/utils"
	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

// defaultPersistQueue bounds the fire-and-forget counter persistence queue.
// Overflow drops the write; the counter is advisory telemetry.
const defaultPersistQueue = 64

// Classifier decides allow-or-block for every outbound request.
//
// Evaluation order is strict because the whitelist must override everything:
//  1. hostname in whitelist        -> allow, no side effects
//  2. URL contains tracker fragment,
//     hostname matches a feed rule,
//     or hostname in blacklist     -> block
//  3. otherwise                    -> allow
//
// On block the counter is incremented, the badge updated, and the new counter
// value queued for persistence, exactly once per blocked request.
type Classifier struct {
	lists      Lists
	trackers   Trackers
	badge      Badge
	counter    CounterWriter
	cache      VerdictCache
	logger     log.Logger
	badgeColor string

	persistCh chan uint64
}

type Options struct {
	Lists      Lists
	Trackers   Trackers
	Badge      Badge
	Counter    CounterWriter
	Cache      VerdictCache
	Logger     log.Logger
	BadgeColor string
}

func New(opts Options) *Classifier {
	return &Classifier{
		lists:      opts.Lists,
		trackers:   opts.Trackers,
		badge:      opts.Badge,
		counter:    opts.Counter,
		cache:      opts.Cache,
		logger:     opts.Logger,
		badgeColor: opts.BadgeColor,
		persistCh:  make(chan uint64, defaultPersistQueue),
	}
}

// Classify evaluates one outbound request URL and returns the verdict.
// It never blocks on I/O: all lookups are in-memory and counter persistence
// is queued, not awaited.
func (c *Classifier) Classify(rawURL string) domain.Verdict {
	host, err := utils.HostnameFromURL(rawURL)
	if err != nil {
		// Fail-open: an unparseable URL cannot match any rule.
		c.logger.Debug(map[string]any{
			"url":   rawURL,
			"error": err.Error(),
		}, "Malformed request URL allowed")
		return domain.Allowed()
	}

	// Whitelist wins before anything else, including the cache, so a stale
	// cached block can never override an exemption.
	if c.lists.InWhitelist(host) {
		return domain.AllowedBy(domain.MatchWhitelist, host)
	}

	v, ok := c.cache.Get(rawURL)
	if !ok {
		v = c.evaluate(rawURL, host)
		c.cache.Put(rawURL, v)
	}

	if v.Blocked {
		c.recordBlock(rawURL, v)
	}
	return v
}

// evaluate applies the block rules in order: built-in fragments, feed rules,
// then the blacklist. The result carries the rule that matched.
func (c *Classifier) evaluate(rawURL, host string) domain.Verdict {
	if frag, ok := c.trackers.MatchFragment(rawURL); ok {
		return domain.BlockedBy(domain.MatchTracker, frag)
	}
	if rule, ok := c.trackers.MatchHost(host); ok {
		return domain.BlockedBy(domain.MatchFeed, rule.Name)
	}
	if c.lists.InBlacklist(host) {
		return domain.BlockedBy(domain.MatchBlacklist, host)
	}
	return domain.Allowed()
}

// recordBlock applies the block side effects exactly once per blocked request:
// counter increment, badge update, and a non-blocking persistence enqueue.
func (c *Classifier) recordBlock(rawURL string, v domain.Verdict) {
	n := c.lists.IncrementBlocked()
	c.badge.Update(strconv.FormatUint(n, 10), c.badgeColor)

	select {
	case c.persistCh <- n:
	default:
		// queue full: drop the write, a later block will persist a newer value
	}

	c.logger.Debug(map[string]any{
		"url":     rawURL,
		"rule":    v.Rule,
		"kind":    v.Kind.String(),
		"blocked": n,
	}, "Request blocked")
}

// OnStoreChanged implements liststore.ChangeListener: any list change
// invalidates every memoized verdict.
func (c *Classifier) OnStoreChanged(domain.ListKind, []string) {
	c.cache.Purge()
}

// RunPersister drains the counter persistence queue until ctx is cancelled.
// Run it on its own goroutine; Classify never waits on it.
func (c *Classifier) RunPersister(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-c.persistCh:
			if err := c.counter.SetBlockedCount(n); err != nil {
				c.logger.Warn(map[string]any{
					"count": n,
					"error": err.Error(),
				}, "Failed to persist blocked counter")
			}
		}
	}
}
