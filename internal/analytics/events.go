package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
	EventError      EventType = "error"
	EventIndexBuild EventType = "index_build"
)

// SearchEvent describes one served query. Returned counts both result lists.
type SearchEvent struct {
	Type             EventType `json:"type"`
	Query            string    `json:"query"`
	Normalized       string    `json:"normalized"`
	Mode             string    `json:"mode"`
	TopK             int       `json:"top_k"`
	LexicalReturned  int       `json:"lexical_returned"`
	SemanticReturned int       `json:"semantic_returned"`
	Returned         int       `json:"returned"`
	LatencyMs        int64     `json:"latency_ms"`
	CacheHit         bool      `json:"cache_hit"`
	Error            string    `json:"error,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"request_id"`
}

// IndexEvent describes one completed build.
type IndexEvent struct {
	Type       EventType `json:"type"`
	BuildID    string    `json:"build_id"`
	Pages      int       `json:"pages"`
	Vocabulary int       `json:"vocabulary"`
	LatencyMs  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// envelope lets the aggregator tell event kinds apart before decoding.
type envelope struct {
	Type EventType `json:"type"`
}
