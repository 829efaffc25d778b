package imageurl

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options controls how a Resolver is configured.
type Options struct {
	Checker Checker
	// Logger receives passthrough reasons and check outcomes at debug level.
	Logger *zerolog.Logger
}

// Resolver wraps the pure URL transform with an existence check and an
// optional diagnostic logger.
type Resolver struct {
	checker Checker
	logger zerolog.Logger
}

// NewResolver constructs a Resolver. A nil checker treats every variant as missing.
func NewResolver(opts Options) *Resolver {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Resolver{checker: opts.Checker, logger: logger}
}

// Resolve is the package-level Resolve with diagnostics.
func (r *Resolver) Resolve(originalURL string, size Size) string {
	out, why := resolve(originalURL, size)
	if why != reasonNone && why != reasonEmpty && why != reasonOriginal {
		r.logger.Debug().Str("url", originalURL).Str("size", string(size)).Str("reason", string(why)).Msg("imageurl: passthrough")
	}
	return out
}

// DeriveOriginal is the package-level DeriveOriginal with diagnostics.
func (r *Resolver) DeriveOriginal(resizedURL string) string {
	out, why := deriveOriginal(resizedURL)
	if why != reasonNone && why != reasonEmpty {
		r.logger.Debug().Str("url", resizedURL).Str("reason", string(why)).Msg("imageurl: derive passthrough")
	}
	return out
}

// ResolveWithFallback returns the resized URL when the check confirms it
// exists and originalURL otherwise. It never fails and checks exactly once.
func (r *Resolver) ResolveWithFallback(ctx context.Context, originalURL string, size Size) string {
	if size == SizeOriginal {
		return originalURL
	}
	candidate := r.Resolve(originalURL, size)
	if candidate == originalURL || r.checker == nil {
		return originalURL
	}
	ok, err := r.checker.Exists(ctx, candidate)
	if err != nil || !ok {
		ev := r.logger.Debug().Str("url", candidate).Str("size", string(size))
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("imageurl: variant unavailable, using original")
		return originalURL
	}
	return candidate
}

// Variants resolves every resized size concurrently, each with fallback.
// The map also carries the original under SizeOriginal.
func (r *Resolver) Variants(ctx context.Context, originalURL string) map[Size]string {
	out := map[Size]string{SizeOriginal: originalURL}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, size := range ResizedSizes {
		size := size
		g.Go(func() error {
			u := r.ResolveWithFallback(ctx, originalURL, size)
			mu.Lock()
			out[size] = u
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
