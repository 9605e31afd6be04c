package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var genres = []string{"hip_hop", "pop", "electronic", "rock", "rnb", "country", "latin"}

var queries = []string{"moto x3m", "viral sound", "trending music", "catchy beat", "lofi"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	baseURL := flag.String("server", "http://127.0.0.1:5002", "shortsd base URL")
	workers := flag.Int("workers", 50, "Concurrent workers")
	duration := flag.Duration("duration", 10*time.Second, "Duration of each phase")
	flag.Parse()

	fmt.Println("=== shortsd Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n\n", *workers, *duration)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: cached listings only
	fmt.Println("\n--- Phase 1: Cached listings (trending, top, genres) ---")
	runPhase(*workers, *duration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.40:
			return doGet(*baseURL, "/api/trending", nil)
		case r < 0.80:
			return doGet(*baseURL, "/api/top", url.Values{"n": {fmt.Sprint(rng.Intn(20) + 1)}})
		default:
			return doGet(*baseURL, "/api/genres", nil)
		}
	})

	// Phase 2: catalog queries that bypass the cache
	fmt.Println("\n--- Phase 2: Mixed load (listings, genre filters, stored links) ---")
	runPhase(*workers, *duration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.30:
			return doGet(*baseURL, "/api/trending", nil)
		case r < 0.50:
			g := genres[rng.Intn(len(genres))]
			return doGet(*baseURL, "/api/videos_by_genre", url.Values{"genres": {g}, "min_confidence": {"0.1"}})
		case r < 0.80:
			q := queries[rng.Intn(len(queries))]
			return doGet(*baseURL, "/api/search_links", url.Values{"query": {q}, "max_results": {"10"}})
		case r < 0.90:
			return doGet(*baseURL, "/api/files", nil)
		default:
			return doGet(*baseURL, "/health", nil)
		}
	})
}

func runPhase(workers int, duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doGet(baseURL, path string, params url.Values) result {
	target := baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	endpoint := "GET " + path

	start := time.Now()
	resp, err := httpClient.Get(target)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
