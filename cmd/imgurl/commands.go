package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"artwall/internal/adapter/repo"
	"artwall/internal/domain"
	"artwall/internal/imageurl"
	"artwall/internal/infra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "imgurl",
		Short:         "Resolve and audit resized gallery images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newResolveCmd(), newDeriveCmd(), newAuditCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var (
		size    string
		verify  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Print the resized variant URL of an original",
		Long: `Rewrites a Firebase or Cloud Storage download URL into its resized variant.
With --verify the variant is checked over HTTP and the original is printed
when it does not exist yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := imageurl.ParseSize(size)
			if !ok {
				return fmt.Errorf("unknown size %q (thumbnail, card, full, original)", size)
			}
			if !verify {
				fmt.Fprintln(cmd.OutOrStdout(), imageurl.Resolve(args[0], s))
				return nil
			}
			r := imageurl.NewResolver(imageurl.Options{Checker: imageurl.NewHTTPChecker(&http.Client{}, timeout)})
			fmt.Fprintln(cmd.OutOrStdout(), r.ResolveWithFallback(cmd.Context(), args[0], s))
			return nil
		},
	}
	cmd.Flags().StringVarP(&size, "size", "s", string(imageurl.SizeCard), "variant size")
	cmd.Flags().BoolVar(&verify, "verify", false, "fall back to the original when the variant is missing")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "check timeout")
	return cmd
}

func newDeriveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "derive <url>...",
		Short: "Print the original URL of resized variants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, u := range args {
				fmt.Fprintln(cmd.OutOrStdout(), imageurl.DeriveOriginal(u))
			}
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	var (
		asJSON   bool
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report artworks whose resized images are missing",
		Long: `Loads every artwork from the configured backend and checks the thumbnail,
card and full variants of each image. Reads the same environment as the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
			ctx := cmd.Context()

			artworks, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()
			items, err := artworks.ListAll(ctx)
			if err != nil {
				return fmt.Errorf("list artworks: %w", err)
			}

			checker, closeChecker, err := openChecker(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeChecker()

			results := imageurl.Audit(ctx, checker, collectURLs(items), parallel)
			return writeAudit(cmd, results, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 8, "concurrent checks")
	return cmd
}

func collectURLs(items []domain.Artwork) []string {
	var urls []string
	for i := range items {
		urls = append(urls, items[i].AssetURLs()...)
	}
	return urls
}

func writeAudit(cmd *cobra.Command, results []imageurl.AuditResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	missing, failed := 0, 0
	for _, r := range results {
		if r.Unsupported {
			fmt.Fprintf(out, "SKIP  %s\n", r.URL)
			continue
		}
		if len(r.Missing) > 0 {
			missing++
			fmt.Fprintf(out, "MISS  %s (%s)\n", r.URL, joinSizes(r.Missing))
		}
		if len(r.Errors) > 0 {
			failed++
			sizes := make([]imageurl.Size, 0, len(r.Errors))
			for s := range r.Errors {
				sizes = append(sizes, s)
			}
			sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
			for _, s := range sizes {
				fmt.Fprintf(out, "ERR   %s (%s): %s\n", r.URL, s, r.Errors[s])
			}
		}
	}
	fmt.Fprintf(out, "%d images checked, %d with missing variants, %d with lookup errors\n", len(results), missing, failed)
	return nil
}

func joinSizes(sizes []imageurl.Size) string {
	parts := make([]string, 0, len(sizes))
	for _, s := range sizes {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func openStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.ArtworkRepository, func(), error) {
	if cfg.ArtworkBackend == infra.BackendFirestore {
		client, err := infra.NewFirestoreClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewArtworkFirestoreRepository(client, logger), func() { _ = client.Close() }, nil
	}
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return repo.NewArtworkRepository(infra.NewSQLRunner(pool, logger)), pool.Close, nil
}

func openChecker(ctx context.Context, cfg *infra.Config) (imageurl.Checker, func(), error) {
	if cfg.CheckMode == infra.CheckGCS {
		client, err := infra.NewStorageClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return imageurl.NewGCSChecker(client), func() { _ = client.Close() }, nil
	}
	return imageurl.NewHTTPChecker(&http.Client{Timeout: cfg.CheckTimeout}, cfg.CheckTimeout), func() {}, nil
}
