package imageurl

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// AuditResult lists the resized variants of one image that could not be found.
type AuditResult struct {
	URL     string `json:"url"`
	Missing []Size `json:"missing,omitempty"`
	// Errors holds checks that failed outright, such as denied access or a
	// timeout. Those sizes are neither present nor missing.
	Errors map[Size]string `json:"errors,omitempty"`
	// Unsupported is set when the URL is not a recognised storage URL.
	Unsupported bool `json:"unsupported,omitempty"`
}

// Audit checks every resized variant of each distinct URL with at most
// parallel checks in flight. Results keep the order of first appearance.
func Audit(ctx context.Context, checker Checker, urls []string, parallel int) []AuditResult {
	if parallel <= 0 {
		parallel = 4
	}
	seen := map[string]bool{}
	var results []AuditResult
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		results = append(results, AuditResult{URL: u})
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range results {
		res := &results[i]
		if _, _, ok := ObjectPath(res.URL); !ok {
			res.Unsupported = true
			continue
		}
		for _, size := range ResizedSizes {
			size := size
			g.Go(func() error {
				variant := Resolve(res.URL, size)
				var (
					ok  bool
					err error
				)
				if checker != nil {
					ok, err = checker.Exists(ctx, variant)
				}
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					if res.Errors == nil {
						res.Errors = map[Size]string{}
					}
					res.Errors[size] = err.Error()
				case !ok:
					res.Missing = append(res.Missing, size)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	rank := map[Size]int{}
	for i, s := range ResizedSizes {
		rank[s] = i
	}
	for i := range results {
		m := results[i].Missing
		sort.Slice(m, func(a, b int) bool { return rank[m[a]] < rank[m[b]] })
	}
	return results
}
