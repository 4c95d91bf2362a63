// Package gather assembles the transitive dependency metadata graph for
// a package release across every configured feed.
//
// Dependency metadata is federated: a release can be published to any
// subset of feeds, and a dependency id discovered in one feed may only
// resolve in another. A per-feed walk therefore misses edges. Gather
// instead drives a fixed point: every id discovered anywhere is queried
// against every feed until a full pass discovers nothing new. The result
// is a set of source-tagged records for a downstream resolver, which
// picks the winning feed per release.
//
// Per-feed failures are logged and skipped rather than aborting the run;
// federated feeds are routinely flaky and requiring unanimity would make
// gathering unusable. Cancellation always aborts.
package gather

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/pkgfed/pkgfed/pkg/errors"
	"github.com/pkgfed/pkgfed/pkg/feed"
	"github.com/pkgfed/pkgfed/pkg/framework"
	"github.com/pkgfed/pkgfed/pkg/observability"
)

// Options configures a gather run.
type Options struct {
	// IncludePrerelease asks feeds for prerelease versions too, listed
	// or unlisted.
	IncludePrerelease bool

	// PreCoverDependencies marks a record's dependency ids as already
	// queried at the feed that returned the record, skipping the
	// follow-up queries there. Only safe for feeds whose identity
	// responses carry the same dependency-id closure a later
	// resolve-by-id would return; against one-record-per-identity feeds
	// it silently drops candidates hosted by the returning feed itself.
	// Off by default.
	PreCoverDependencies bool

	// MaxParallelism bounds concurrent feed queries. Defaults to the
	// number of queryable feeds; 1 serializes the run.
	MaxParallelism int

	// Logger receives progress and per-feed failure diagnostics
	// (optional).
	Logger func(string, ...any)

	// OnState observes per-(feed, id) query state transitions
	// (optional). Used by the CLI progress display.
	OnState func(source, id string, state State)

	// RunID correlates log and hook events for one invocation. A random
	// id is assigned if empty.
	RunID string
}

func (o Options) withDefaults(queryable int) Options {
	opts := o
	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = max(queryable, 1)
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.OnState == nil {
		opts.OnState = func(string, string, State) {}
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return opts
}

// querySource pairs a feed with its resolved query capability.
type querySource struct {
	src      *feed.Source
	provider feed.DependencyProvider
}

// Gather collects the complete transitive dependency metadata closure of
// root across the given feeds, narrowed to the target framework.
//
// Feeds without the dependency query capability are silently excluded;
// if none remain the run fails with NO_SOURCES_AVAILABLE. Per-feed query
// failures are logged and do not abort the run. On cancellation the run
// fails with CANCELLED and no partial results are returned.
//
// The returned records are deduplicated by (id, version, feed) and
// sorted by candidate key.
func Gather(ctx context.Context, root feed.Identity, target framework.Framework, sources []*feed.Source, registry feed.ProviderRegistry, opts Options) ([]feed.SourcedInfo, error) {
	queryable := make([]querySource, 0, len(sources))
	for _, src := range sources {
		provider, ok := registry.ProviderFor(src)
		if !ok {
			continue
		}
		queryable = append(queryable, querySource{src: src, provider: provider})
	}
	if len(queryable) == 0 {
		return nil, pkgerrors.New(pkgerrors.ErrCodeNoSourcesAvailable, "none of the %d configured sources can answer dependency queries", len(sources))
	}

	opts = opts.withDefaults(len(queryable))
	start := time.Now()
	hooks := observability.Gather()
	hooks.OnGatherStart(ctx, opts.RunID, root.ID, len(queryable))

	r := &run{
		root:    root,
		target:  target,
		sources: queryable,
		opts:    opts,
		set:     NewCandidateSet(),
		ledger:  NewLedger(sourceRefs(queryable)),
		hooks:   hooks,
	}

	passes, err := r.execute(ctx)
	hooks.OnGatherComplete(ctx, opts.RunID, r.set.Len(), passes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return r.set.Snapshot(), nil
}

// run holds the shared state of one gather invocation. The candidate
// set and ledger are created here, mutated only by this run's workers,
// and surrendered to the caller on completion; nothing persists between
// invocations.
type run struct {
	root    feed.Identity
	target  framework.Framework
	sources []querySource
	opts    Options
	set     *CandidateSet
	ledger  *Ledger
	hooks   observability.GatherHooks
}

func (r *run) execute(ctx context.Context) (passes int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, cancelled(err)
	}

	if err := r.seed(ctx); err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return passes, cancelled(err)
		}
		passes++

		dispatched, err := r.pass(ctx)
		if err != nil {
			return passes, err
		}
		if dispatched == 0 {
			return passes, nil
		}
	}
}

// seed queries every feed for the root identity. The root id is marked
// in each feed's ledger before the query goes out, so a failing feed is
// not retried forever. Dependency ids carried by returned records enter
// the discovered universe; the fixed-point loop then queries them
// against every feed.
func (r *run) seed(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxParallelism)

	for _, qs := range r.sources {
		g.Go(func() error {
			r.ledger.Mark(qs.src, r.root.ID)
			r.opts.OnState(qs.src.Name, r.root.ID, StateQueued)

			records, err := r.query(gctx, qs, r.root.ID, func(c context.Context) ([]feed.PackageInfo, error) {
				return qs.provider.ResolveIdentities(c, []feed.Identity{r.root}, r.target, r.opts.IncludePrerelease)
			})
			if err != nil {
				return err
			}
			r.absorb(qs, records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return cancelled(err)
	}
	return nil
}

// pass runs one fixed-point iteration: every id known anywhere but not
// yet queried at a feed is dispatched against that feed. Returns the
// number of queries dispatched; zero means the fixed point is reached.
func (r *run) pass(ctx context.Context) (int, error) {
	type task struct {
		qs querySource
		id string
	}

	universe := r.ledger.Universe()
	var tasks []task
	for _, qs := range r.sources {
		for _, id := range r.ledger.Missing(qs.src, universe) {
			// Pre-mark: the query is about to happen, and a failure
			// still counts as queried.
			r.ledger.Mark(qs.src, id)
			r.opts.OnState(qs.src.Name, id, StateQueued)
			tasks = append(tasks, task{qs: qs, id: id})
		}
	}
	if len(tasks) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxParallelism)

	for _, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			records, err := r.query(gctx, t.qs, t.id, func(c context.Context) ([]feed.PackageInfo, error) {
				return t.qs.provider.ResolveID(c, t.id, r.target, r.opts.IncludePrerelease)
			})
			if err != nil {
				return err
			}
			r.absorb(t.qs, records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return len(tasks), cancelled(err)
	}
	return len(tasks), nil
}

// query invokes fn against one feed, translating outcomes: cancellation
// propagates, per-feed failures are logged and swallowed (the id stays
// marked in the ledger, so it is not retried), and results pass through.
func (r *run) query(ctx context.Context, qs querySource, id string, fn func(context.Context) ([]feed.PackageInfo, error)) ([]feed.PackageInfo, error) {
	r.opts.OnState(qs.src.Name, id, StateInFlight)
	r.hooks.OnQueryStart(ctx, r.opts.RunID, qs.src.Name, id)
	start := time.Now()

	records, err := fn(ctx)
	r.hooks.OnQueryComplete(ctx, r.opts.RunID, qs.src.Name, id, len(records), time.Since(start), err)

	switch {
	case err == nil:
		if len(records) == 0 {
			r.opts.OnState(qs.src.Name, id, StateEmpty)
		} else {
			r.opts.OnState(qs.src.Name, id, StateResolved)
		}
		return records, nil
	case isCancellation(ctx, err):
		return nil, err
	default:
		r.opts.OnState(qs.src.Name, id, StateFailed)
		r.opts.Logger("source %s failed for %s: %v", qs.src.Name, id, err)
		return nil, nil
	}
}

// absorb inserts records into the candidate set and registers their
// dependency ids as discovered. With PreCoverDependencies set the ids
// are additionally marked as queried at the returning feed, matching
// the behavior of closure-returning feed protocols.
func (r *run) absorb(qs querySource, records []feed.PackageInfo) {
	for _, info := range records {
		r.set.Insert(feed.SourcedInfo{PackageInfo: info, Source: qs.src})
		ids := dependencyIDs(info)
		if r.opts.PreCoverDependencies {
			r.ledger.MarkAll(qs.src, ids)
		} else {
			r.ledger.Discover(ids)
		}
	}
}

func dependencyIDs(info feed.PackageInfo) []string {
	if len(info.Dependencies) == 0 {
		return nil
	}
	ids := make([]string, 0, len(info.Dependencies))
	for _, dep := range info.Dependencies {
		if strings.TrimSpace(dep.ID) == "" {
			continue
		}
		ids = append(ids, dep.ID)
	}
	return ids
}

func sourceRefs(queryable []querySource) []*feed.Source {
	refs := make([]*feed.Source, len(queryable))
	for i, qs := range queryable {
		refs[i] = qs.src
	}
	return refs
}

func cancelled(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeCancelled, err, "gather cancelled")
}

// isCancellation distinguishes a context abort from a per-feed failure.
// Adapters wrap transport errors in their own types, so both the context
// state and the error chain are consulted.
func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
