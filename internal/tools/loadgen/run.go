package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
	AvgLatency    time.Duration
	MaxLatency    time.Duration
}

type target struct {
	method  string
	path    string
	newBody func(r *rand.Rand) []byte
}

type job struct {
	method string
	path   string
	body   []byte
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	targets := targetsForProfile(cfg.Profile)
	if len(targets) == 0 {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	var total, failures, s2xx, s4xx, s5xx, latencySum, latencyMax int64
	jobs := make(chan job, cfg.Concurrency*2)

	grp, grpCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Concurrency; i++ {
		grp.Go(func() error {
			for j := range jobs {
				var reqBody io.Reader
				if j.body != nil {
					reqBody = bytes.NewReader(j.body)
				}
				req, err := http.NewRequestWithContext(grpCtx, j.method, cfg.BaseURL+j.path, reqBody)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if j.body != nil {
					req.Header.Set("Content-Type", "application/json")
					req.Header.Set("Idempotency-Key", uuid.New().String())
				}
				start := time.Now()
				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				_ = resp.Body.Close()
				elapsed := time.Since(start).Nanoseconds()
				atomic.AddInt64(&total, 1)
				atomic.AddInt64(&latencySum, elapsed)
				for {
					seen := atomic.LoadInt64(&latencyMax)
					if elapsed <= seen || atomic.CompareAndSwapInt64(&latencyMax, seen, elapsed) {
						break
					}
				}
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&s2xx, 1)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&s4xx, 1)
				case resp.StatusCode >= 500:
					atomic.AddInt64(&s5xx, 1)
				}
			}
			return nil
		})
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()

producer:
	for {
		select {
		case <-ctx.Done():
			break producer
		case <-ticker.C:
			tgt := targets[rng.Intn(len(targets))]
			j := job{method: tgt.method, path: tgt.path}
			if tgt.newBody != nil {
				j.body = tgt.newBody(rng)
			}
			select {
			case jobs <- j:
			case <-ctx.Done():
				break producer
			}
		}
	}
	close(jobs)
	_ = grp.Wait()

	res := Result{TotalRequests: total, Failures: failures, Status2xx: s2xx, Status4xx: s4xx, Status5xx: s5xx}
	if total > 0 {
		res.AvgLatency = time.Duration(latencySum / total)
		res.MaxLatency = time.Duration(latencyMax)
	}
	return res, nil
}

func targetsForProfile(profile string) []target {
	lists := []target{
		{method: http.MethodGet, path: "/api/product/category-list/"},
		{method: http.MethodGet, path: "/api/product/type-list/"},
		{method: http.MethodGet, path: "/api/product/product-list/"},
	}
	switch strings.ToLower(profile) {
	case "browse":
		return lists
	case "", "mixed":
		return append(lists,
			target{method: http.MethodGet, path: "/api/product/product-list/?page=2&page_size=5"},
			target{method: http.MethodPost, path: "/api/product/category-create/", newBody: func(r *rand.Rand) []byte {
				return []byte(fmt.Sprintf(`{"title":"Load Category %08x"}`, r.Uint32()))
			}},
		)
	case "error-heavy":
		return []target{
			{method: http.MethodGet, path: "/api/product/product-list/?page=abc"},
			{method: http.MethodGet, path: "/api/product/product-list/?page_size=999"},
			{method: http.MethodGet, path: "/api/product/does-not-exist/"},
			{method: http.MethodPost, path: "/api/product/category-create/", newBody: func(*rand.Rand) []byte {
				return []byte(`{"title":""}`)
			}},
			{method: http.MethodPost, path: "/api/product/type-create/", newBody: func(*rand.Rand) []byte {
				return []byte(`{"title":"Load Type","category":"not-a-number"}`)
			}},
		}
	default:
		return nil
	}
}
