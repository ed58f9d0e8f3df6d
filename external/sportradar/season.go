package sportradar

import (
	"context"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/g4biGTJS/vsport-elo/internal/platform/logging"
	"github.com/g4biGTJS/vsport-elo/internal/platform/resilience"
)

// SourceHandle is the process-wide identity of the live data feed: the
// season ID the upstream currently serves for a league.
type SourceHandle struct {
	ID         string
	ResolvedAt time.Time
}

var (
	seasonPathPattern = regexp.MustCompile(`/season/(\d{5,})`)
	numericIDPattern  = regexp.MustCompile(`\b(\d{6,8})\b`)
)

type SeasonResolverConfig struct {
	Client      *Client
	CategoryURL string
	LeagueName  string
	SeedID      string
	TTL         time.Duration
	Logger      *logging.Logger
}

// SeasonResolver discovers the current season ID from the upstream category
// page. Resolution never fails loudly: when the page cannot be fetched or no
// pattern matches, the previous ID is kept. Stale beats unknown here.
type SeasonResolver struct {
	client      *Client
	categoryURL string
	leagueLink  *regexp.Regexp
	ttl         time.Duration
	logger      *logging.Logger

	handle atomic.Pointer[SourceHandle]
	flight resilience.SingleFlight
	now    func() time.Time
}

func NewSeasonResolver(cfg SeasonResolverConfig) *SeasonResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	// Most specific pattern first: a season link whose anchor text carries
	// the league name.
	var leagueLink *regexp.Regexp
	if cfg.LeagueName != "" {
		leagueLink = regexp.MustCompile(
			`(?is)href="[^"]*/season/(\d{5,})"[^>]*>[^<]*` + regexp.QuoteMeta(cfg.LeagueName),
		)
	}

	r := &SeasonResolver{
		client:      cfg.Client,
		categoryURL: cfg.CategoryURL,
		leagueLink:  leagueLink,
		ttl:         ttl,
		logger:      logger,
		now:         time.Now,
	}
	r.handle.Store(&SourceHandle{ID: cfg.SeedID})
	return r
}

// Resolve returns the current season ID. Within the TTL this is a cache read
// with no network. Refreshes are collapsed across concurrent callers;
// replacement is a single atomic swap, so reads never block.
func (r *SeasonResolver) Resolve(ctx context.Context) string {
	current := r.handle.Load()
	if current.ID != "" && r.now().Sub(current.ResolvedAt) < r.ttl {
		return current.ID
	}

	out, _, _ := r.flight.Do("season", func() (any, error) {
		return r.refresh(ctx), nil
	})
	if id, ok := out.(string); ok && id != "" {
		return id
	}
	return current.ID
}

// Current returns the cached handle without triggering a refresh.
func (r *SeasonResolver) Current() SourceHandle {
	return *r.handle.Load()
}

func (r *SeasonResolver) refresh(ctx context.Context) string {
	previous := r.handle.Load().ID

	doc, err := r.client.FetchDocument(ctx, r.categoryURL, AcceptHTML)
	if err != nil {
		r.logger.WarnContext(ctx, "season discovery failed, keeping cached id",
			"category_url", r.categoryURL,
			"cached_id", previous,
			"error", err,
		)
		// Re-arm the TTL so a dead category page is not hammered on every
		// request.
		r.handle.Store(&SourceHandle{ID: previous, ResolvedAt: r.now()})
		return previous
	}

	id := r.findSeasonID(doc.Body)
	if id == "" {
		r.logger.WarnContext(ctx, "no season id found on category page",
			"category_url", r.categoryURL,
			"cached_id", previous,
			"length", doc.Length(),
		)
		r.handle.Store(&SourceHandle{ID: previous, ResolvedAt: r.now()})
		return previous
	}

	if id != previous {
		r.logger.InfoContext(ctx, "season id changed", "previous", previous, "current", id)
	}
	r.handle.Store(&SourceHandle{ID: id, ResolvedAt: r.now()})
	return id
}

// findSeasonID applies the candidate patterns most-specific first: the
// league-qualified season link, then any season path, then the largest
// plausible numeric ID on the page.
func (r *SeasonResolver) findSeasonID(body string) string {
	if r.leagueLink != nil {
		if m := r.leagueLink.FindStringSubmatch(body); len(m) == 2 {
			return m[1]
		}
	}

	if m := seasonPathPattern.FindStringSubmatch(body); len(m) == 2 {
		return m[1]
	}

	best := ""
	var bestVal int64
	for _, m := range numericIDPattern.FindAllStringSubmatch(body, -1) {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if v > bestVal {
			bestVal = v
			best = m[1]
		}
	}
	return best
}
