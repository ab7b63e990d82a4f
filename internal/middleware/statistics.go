package middleware

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// KeyFunc names the bucket a request is counted in.
type KeyFunc func(c *gin.Context) string

// EndpointKey groups requests by method and route template, e.g. "GET /api/pokemon/:id".
func EndpointKey(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	return c.Request.Method + " " + route
}

// ActionKey groups requests by the handler that served them, e.g. "PokemonHandler.levelUp".
func ActionKey(c *gin.Context) string {
	name := c.HandlerName()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if _, rest, ok := strings.Cut(name, "."); ok {
		name = rest
	}
	name = strings.TrimSuffix(name, "-fm")
	name = strings.NewReplacer("(*", "", ")", "").Replace(name)
	return name
}

// Stat is a read-only snapshot of one bucket.
type Stat struct {
	Key         string        `json:"key"`
	Count       int64         `json:"count"`
	Errors      int64         `json:"errors"`
	AvgMs       float64       `json:"avg_ms"`
	MinMs       float64       `json:"min_ms"`
	MaxMs       float64       `json:"max_ms"`
	StatusCodes map[int]int64 `json:"status_codes"`
	LastSeen    time.Time     `json:"last_seen"`
}

type bucket struct {
	count    int64
	errors   int64
	total    time.Duration
	min      time.Duration
	max      time.Duration
	statuses map[int]int64
	lastSeen time.Time
}

// Collector accumulates per-key request counts and latencies.
type Collector struct {
	name        string
	key         KeyFunc
	reportEvery int64

	mu      sync.Mutex
	buckets map[string]*bucket
	total   int64

	log zerolog.Logger
}

// NewCollector builds a collector. When reportEvery > 0 a summary is logged every reportEvery requests.
func NewCollector(name string, key KeyFunc, reportEvery int, logger zerolog.Logger) *Collector {
	return &Collector{
		name:        name,
		key:         key,
		reportEvery: int64(reportEvery),
		buckets:     make(map[string]*bucket),
		log:         logger.With().Str("module", "monitoring").Str("component", name).Logger(),
	}
}

// Name identifies the collector in reports.
func (s *Collector) Name() string { return s.name }

// Handler records every request after the rest of the chain ran.
func (s *Collector) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Record(s.key(c), c.Writer.Status(), time.Since(start), start)
	}
}

// Record adds one observation. Status codes >= 400 count as errors.
func (s *Collector) Record(key string, status int, took time.Duration, at time.Time) {
	s.mu.Lock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{min: took, statuses: map[int]int64{}}
		s.buckets[key] = b
	}
	b.count++
	b.total += took
	b.min = min(b.min, took)
	b.max = max(b.max, took)
	b.statuses[status]++
	if status >= 400 {
		b.errors++
	}
	b.lastSeen = at
	s.total++
	report := s.reportEvery > 0 && s.total%s.reportEvery == 0
	s.mu.Unlock()

	if report {
		s.Report(5)
	}
}

// Snapshot returns every bucket, busiest first.
func (s *Collector) Snapshot() []Stat {
	s.mu.Lock()
	out := make([]Stat, 0, len(s.buckets))
	for k, b := range s.buckets {
		st := Stat{
			Key:         k,
			Count:       b.count,
			Errors:      b.errors,
			MinMs:       ms(b.min),
			MaxMs:       ms(b.max),
			StatusCodes: make(map[int]int64, len(b.statuses)),
			LastSeen:    b.lastSeen,
		}
		if b.count > 0 {
			st.AvgMs = ms(b.total) / float64(b.count)
		}
		for code, n := range b.statuses {
			st.StatusCodes[code] = n
		}
		out = append(out, st)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b Stat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Total is the number of requests recorded so far.
func (s *Collector) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Reset drops every bucket.
func (s *Collector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]*bucket)
	s.total = 0
}

// Report logs the top entries of the current snapshot.
func (s *Collector) Report(top int) {
	snap := s.Snapshot()
	if len(snap) == 0 {
		return
	}
	if top > 0 && len(snap) > top {
		snap = snap[:top]
	}
	arr := zerolog.Arr()
	for _, st := range snap {
		arr.Dict(zerolog.Dict().
			Str("key", st.Key).
			Int64("count", st.Count).
			Int64("errors", st.Errors).
			Float64("avg_ms", st.AvgMs).
			Float64("max_ms", st.MaxMs))
	}
	s.log.Info().Int64("total", s.Total()).Array("top", arr).Msg("request statistics")
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
