package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pkgfed/pkgfed/pkg/cache"
	"github.com/pkgfed/pkgfed/pkg/config"
	"github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/feeds"
	"github.com/pkgfed/pkgfed/pkg/feeds/registry"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/gather"
)

// gatherOpts holds the command-line flags for the gather command.
type gatherOpts struct {
	target      string // target framework override
	prerelease  bool   // include prerelease versions
	parallel    int    // max concurrent feed queries
	jsonOut     bool   // emit JSON instead of a table
	interactive bool   // live progress display
	noCache     bool   // bypass the response cache
	preCover    bool   // trust feeds to cover their own records' dependency ids
}

func (c *CLI) gatherCommand() *cobra.Command {
	opts := gatherOpts{}

	cmd := &cobra.Command{
		Use:   "gather <id> <version>",
		Short: "Collect the transitive dependency metadata of a package release",
		Long: `Gather queries every configured feed for the package release and each
dependency id it discovers, repeating until no feed owes a query, and
prints the resulting candidate records with their feed provenance.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGather(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target framework (default from config)")
	cmd.Flags().BoolVar(&opts.prerelease, "prerelease", false, "include prerelease versions")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 0, "max concurrent feed queries (default: config max_parallelism, else number of feeds)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "emit JSON to stdout")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "live per-feed progress display")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().BoolVar(&opts.preCover, "pre-cover", false, "skip re-querying a feed for ids its own records declared")

	return cmd
}

func (c *CLI) runGather(ctx context.Context, id, ver string, opts gatherOpts) error {
	records, _, err := c.gather(ctx, id, ver, opts)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeRecordsJSON(os.Stdout, records)
	}

	if len(records) == 0 {
		printWarning("no feed hosts %s %s (or anything it depends on)", id, ver)
		return nil
	}
	fmt.Println(recordsTable(records))
	printSummary(records)
	return nil
}

// gather loads the catalog and runs one gather invocation. Shared by the
// gather and graph commands.
func (c *CLI) gather(ctx context.Context, id, ver string, opts gatherOpts) ([]feed.SourcedInfo, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	root, err := feed.NewIdentity(id, ver)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPackage, err, "root package")
	}

	target := cfg.TargetFramework()
	if opts.target != "" {
		target, err = framework.Parse(opts.target)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidFramework, err, "target flag")
		}
	}

	sources := cfg.Sources()
	if len(sources) == 0 {
		printInfo("no feeds configured; run %q to create a catalog", appName+" config init")
		return nil, nil, errors.New(errors.ErrCodeNoSourcesAvailable, "feed catalog is empty")
	}

	backend := cache.Cache(cache.NewNullCache())
	if !opts.noCache {
		backend, err = c.openCache(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
	}
	defer backend.Close()

	gopts := gather.Options{
		IncludePrerelease:    opts.prerelease || cfg.IncludePrerelease,
		PreCoverDependencies: opts.preCover,
		MaxParallelism:       opts.parallel,
		Logger:               func(format string, args ...any) { c.Logger.Warnf(format, args...) },
	}
	if gopts.MaxParallelism == 0 {
		gopts.MaxParallelism = cfg.MaxParallelism
	}

	reg := registry.New(backend, feeds.DefaultCacheTTL)

	prog := newProgress(c.Logger)
	var records []feed.SourcedInfo
	if opts.interactive {
		records, err = c.gatherInteractive(ctx, root, target, sources, reg, gopts)
	} else {
		spinner := newSpinner(ctx, fmt.Sprintf("Gathering %s across %d feeds...", root, len(sources)))
		spinner.Start()
		records, err = gather.Gather(ctx, root, target, sources, reg, gopts)
		spinner.Stop()
	}
	if err != nil {
		return nil, nil, err
	}

	prog.done(fmt.Sprintf("Gathered %d candidate records for %s", len(records), root))
	return records, cfg, nil
}

// recordJSON is the stable JSON shape of one candidate record.
type recordJSON struct {
	ID           string            `json:"id"`
	Version      string            `json:"version"`
	Source       string            `json:"source"`
	Listed       bool              `json:"listed"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func writeRecordsJSON(w io.Writer, records []feed.SourcedInfo) error {
	out := make([]recordJSON, len(records))
	for i, rec := range records {
		var deps map[string]string
		if len(rec.Dependencies) > 0 {
			deps = make(map[string]string, len(rec.Dependencies))
			for _, d := range rec.Dependencies {
				deps[d.ID] = d.Range.String()
			}
		}
		out[i] = recordJSON{
			ID:           rec.Identity.ID,
			Version:      rec.Identity.Version.Normalize(),
			Source:       rec.Source.Name,
			Listed:       rec.Listed,
			Dependencies: deps,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func recordsTable(records []feed.SourcedInfo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Headers("PACKAGE", "VERSION", "FEED", "DEPENDENCIES", "LISTED")

	for _, rec := range records {
		deps := make([]string, len(rec.Dependencies))
		for i, d := range rec.Dependencies {
			deps[i] = d.ID + " " + d.Range.String()
		}
		listed := "yes"
		if !rec.Listed {
			listed = "no"
		}
		t.Row(rec.Identity.ID, rec.Identity.Version.Normalize(), rec.Source.Name, strings.Join(deps, ", "), listed)
	}
	return t.String()
}

func printSummary(records []feed.SourcedInfo) {
	perFeed := make(map[string]int)
	for _, rec := range records {
		perFeed[rec.Source.Name]++
	}
	names := make([]string, 0, len(perFeed))
	for name := range perFeed {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, perFeed[name])
	}
	printDetail("%d records (%s)", len(records), strings.Join(parts, ", "))
}
