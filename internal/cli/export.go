package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studiowebux/s1dash/internal/filter"
	"github.com/studiowebux/s1dash/internal/types"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"
)

// DefaultExportConcurrency bounds parallel reads during export
const DefaultExportConcurrency = 8

// ExportOptions contains options for dumping a store
type ExportOptions struct {
	Format      string // json or yaml
	Pattern     string // Fuzzy key filter
	Concurrency int
}

// Export reads every key and writes them as a JSON or YAML list. Entries
// keep the listing order, or match order when a pattern is set.
func (a *App) Export(ctx context.Context, ref string, opts ExportOptions) error {
	encode, err := encoder(opts.Format)
	if err != nil {
		return err
	}

	client, conn, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer a.close(client)

	keys, err := client.ListKeys(ctx)
	if err != nil {
		return err
	}
	if opts.Pattern != "" {
		keys = filteredKeys(keys, opts.Pattern)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultExportConcurrency
	}

	entries := make([]types.KeyValue, len(keys))
	sem := semaphore.NewWeighted(int64(concurrency))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, key := range keys {
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return fmt.Errorf("acquire semaphore: %w", err)
			}
			defer sem.Release(1)

			value, err := client.ReadRaw(groupCtx, key)
			if err != nil {
				return err
			}
			entries[i] = types.KeyValue{Key: key, Value: value}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("export %s: %w", conn.Name, err)
	}

	data, err := encode(entries)
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	_, err = a.Out.Write(data)
	return err
}

func encoder(format string) (func(any) ([]byte, error), error) {
	switch format {
	case "", "json":
		return func(v any) ([]byte, error) {
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		}, nil
	case "yaml":
		return yaml.Marshal, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

// filteredKeys narrows keys by a fuzzy pattern, keeping match order
func filteredKeys(keys []string, pattern string) []string {
	matches := filter.Keys(keys, pattern)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Key
	}
	return out
}
