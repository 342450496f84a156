// Command loadtest drives concurrent queries against a running search service
// and prints throughput, latency percentiles and cache hit counts.
//
// Usage:
//
//	go run ./cmd/loadtest -url http://localhost:8080 -concurrency 20 -mode both
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var defaultQueries = []string{
	"inverted index",
	"tf idf weighting",
	"cosine similarity",
	"vector space model",
	"precision and recall",
	"stemming and lemmatization",
	"stop words",
	"page rank",
	"query expansion",
	"word embeddings",
	"boolean retrieval",
	"document frequency",
	"relevance feedback",
	"bm25",
	"latent semantic indexing",
}

// Config describes one load test run.
type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Mode        string
	TopK        int
	Queries     []string
}

// searchBody is the subset of the search response the load test inspects.
type searchBody struct {
	CacheHit bool              `json:"cache_hit"`
	TFIDF    []json.RawMessage `json:"tfidf_results"`
	Emb      []json.RawMessage `json:"emb_results"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	mode := flag.String("mode", "both", "search mode: lexical, semantic or both")
	topK := flag.Int("top-k", 5, "results per strategy")
	queryFile := flag.String("queries", "", "file with one query per line (default: built-in list)")
	flag.Parse()

	queries := defaultQueries
	if *queryFile != "" {
		q, err := readQueries(*queryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading queries: %v\n", err)
			os.Exit(1)
		}
		queries = q
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(*baseURL, "/"),
		Concurrency: *concurrency,
		Duration:    *duration,
		Mode:        *mode,
		TopK:        *topK,
		Queries:     queries,
	}

	fmt.Println("=== Page Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Mode:        %s (top %d)\n", cfg.Mode, cfg.TopK)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	start := time.Now()
	stats := run(context.Background(), cfg)
	if !stats.Report(os.Stdout, time.Since(start)) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			out = append(out, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s has no queries", path)
	}
	return out, nil
}

// searchURL builds the request URL for one query.
func searchURL(cfg Config, query string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("mode", cfg.Mode)
	v.Set("top_k", strconv.Itoa(cfg.TopK))
	return cfg.BaseURL + "/api/v1/search?" + v.Encode()
}

func run(parent context.Context, cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(parent, cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(next int) {
			defer wg.Done()
			for ctx.Err() == nil {
				query := cfg.Queries[next%len(cfg.Queries)]
				next++
				d, status, body, err := doSearch(ctx, client, searchURL(cfg, query))
				if ctx.Err() != nil {
					return
				}
				stats.Record(d, status, body, err)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func doSearch(ctx context.Context, client *http.Client, rawURL string) (time.Duration, int, *searchBody, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, nil, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return time.Since(start), 0, nil, err
	}
	defer resp.Body.Close()

	var body searchBody
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return time.Since(start), resp.StatusCode, nil, fmt.Errorf("decoding response: %w", err)
		}
		return time.Since(start), resp.StatusCode, &body, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return time.Since(start), resp.StatusCode, nil, nil
}
