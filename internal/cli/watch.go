package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/grantcarthew/storagectl/internal/cli/format"
	"github.com/grantcarthew/storagectl/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchCmd = &cobra.Command{
	Use:   "watch <origin>",
	Short: "Stream cache storage and IndexedDB changes for an origin",
	Long: `Tracks an origin and prints Storage events until interrupted.
Without --cache or --idb both are watched. With --json each event is
printed as one JSON object per line.

Examples:
  watch https://example.com
  watch https://example.com --idb
  watch https://example.com --duration 30s --json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Bool("cache", false, "Watch cache storage")
	watchCmd.Flags().Bool("idb", false, "Watch IndexedDB")
	watchCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	rootCmd.AddCommand(watchCmd)
}

// eventPrinter serializes output from the per-stream goroutines.
type eventPrinter struct {
	mu   sync.Mutex
	opts format.OutputOptions
}

func (p *eventPrinter) print(method, kind, origin, detail string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if JSONOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"method": method,
			"time":   time.Now().Format(time.RFC3339Nano),
			"params": payload,
		})
	}
	return format.Event(os.Stdout, time.Now(), kind, origin, detail, p.opts)
}

// pump prints every event of st until ctx ends or the session closes.
func pump[T any](ctx context.Context, st *cdp.Stream[T], emit func(T) error) error {
	defer st.Close()
	for evt := range st.All(ctx) {
		if err := emit(evt); err != nil {
			return err
		}
	}
	if st.Dropped() > 0 {
		logger.WithField("dropped", st.Dropped()).Warn("watch: events were dropped")
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	origin := args[0]
	cache, _ := cmd.Flags().GetBool("cache")
	idb, _ := cmd.Flags().GetBool("idb")
	if !cache && !idb {
		cache, idb = true, true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if d, _ := cmd.Flags().GetDuration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	d := t.Storage
	p := &eventPrinter{opts: format.NewOutputOptions(JSONOutput, NoColor)}
	g, gctx := errgroup.WithContext(ctx)

	// Subscribe before tracking so no event is missed.
	if cache {
		content, list := d.OnCacheStorageContentUpdated(), d.OnCacheStorageListUpdated()
		g.Go(func() error {
			return pump(gctx, content, func(e storage.CacheStorageContentUpdated) error {
				return p.print(storage.EventCacheStorageContentUpdated, "cache.content", e.Origin, "cache="+e.CacheName, e)
			})
		})
		g.Go(func() error {
			return pump(gctx, list, func(e storage.CacheStorageListUpdated) error {
				return p.print(storage.EventCacheStorageListUpdated, "cache.list", e.Origin, "", e)
			})
		})
	}
	if idb {
		content, list := d.OnIndexedDBContentUpdated(), d.OnIndexedDBListUpdated()
		g.Go(func() error {
			return pump(gctx, content, func(e storage.IndexedDBContentUpdated) error {
				detail := fmt.Sprintf("db=%s store=%s", e.DatabaseName, e.ObjectStoreName)
				return p.print(storage.EventIndexedDBContentUpdated, "idb.content", e.Origin, detail, e)
			})
		})
		g.Go(func() error {
			return pump(gctx, list, func(e storage.IndexedDBListUpdated) error {
				return p.print(storage.EventIndexedDBListUpdated, "idb.list", e.Origin, "", e)
			})
		})
	}

	if err := track(ctx, d, origin, cache, idb); err != nil {
		stop()
		_ = g.Wait()
		return outputError(err.Error())
	}
	debugf("watching %s (cache=%v idb=%v)", origin, cache, idb)

	werr := g.Wait()

	if err := untrack(d, origin, cache, idb); err != nil {
		debugf("untrack %s: %v", origin, err)
	}
	if werr != nil {
		return outputError(werr.Error())
	}
	if err := t.Session.Err(); err != nil && ctx.Err() == nil {
		return outputError(err.Error())
	}
	return nil
}

func track(ctx context.Context, d *storage.Domain, origin string, cache, idb bool) error {
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	if cache {
		if err := d.TrackCacheStorageForOrigin(ctx, origin); err != nil {
			return err
		}
	}
	if idb {
		if err := d.TrackIndexedDBForOrigin(ctx, origin); err != nil {
			return err
		}
	}
	return nil
}

func untrack(d *storage.Domain, origin string, cache, idb bool) error {
	ctx, cancel := commandContext()
	defer cancel()

	var err error
	if cache {
		err = d.UntrackCacheStorageForOrigin(ctx, origin)
	}
	if idb {
		if uerr := d.UntrackIndexedDBForOrigin(ctx, origin); err == nil {
			err = uerr
		}
	}
	return err
}
