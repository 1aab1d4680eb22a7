package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/data/stores"
	"github.com/colonyops/docket/pkg/iojson"
)

// rawGetter is implemented by backends that keep per-key timestamps.
type rawGetter interface {
	GetRaw(ctx context.Context, key string) (stores.Entry, error)
}

// KVCmd inspects the raw key-value store.
type KVCmd struct {
	flags *Flags

	match string
}

// NewKVCmd creates a new kv command.
func NewKVCmd(flags *Flags) *KVCmd {
	return &KVCmd{flags: flags}
}

// Register adds the kv command to the application.
func (cmd *KVCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "kv",
		Usage: "Inspect the underlying key-value store",
		Description: `Low-level access to the stored keys, mainly for debugging.

Examples:
  docket kv keys
  docket kv keys --match "weather*"
  docket kv get todos`,
		Commands: []*cli.Command{
			{
				Name:      "keys",
				Usage:     "List stored keys",
				UsageText: "docket kv keys [--match <glob>]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "match",
						Aliases:     []string{"m"},
						Usage:       "only keys matching this glob",
						Destination: &cmd.match,
					},
				},
				Action: cmd.runKeys,
			},
			{
				Name:      "get",
				Usage:     "Print the raw value of a key",
				UsageText: "docket kv get <key>",
				Action:    cmd.runGet,
			},
		},
	})

	return app
}

func (cmd *KVCmd) runKeys(ctx context.Context, c *cli.Command) error {
	if cmd.match != "" && !doublestar.ValidatePattern(cmd.match) {
		return fmt.Errorf("invalid pattern %q", cmd.match)
	}

	keys, err := cmd.flags.Storage.KV.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	out := c.Root().Writer
	for _, k := range matchKeys(keys, cmd.match) {
		if _, err := fmt.Fprintln(out, k); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *KVCmd) runGet(ctx context.Context, c *cli.Command) error {
	key, err := requireArg(c, "key")
	if err != nil {
		return err
	}

	store := cmd.flags.Storage.KV
	out := c.Root().Writer

	if rg, ok := store.(rawGetter); ok && jsonOutput(cmd.flags.Format, out) {
		entry, err := rg.GetRaw(ctx, key)
		if err != nil {
			return keyError(key, err)
		}
		return iojson.WriteLine(out, map[string]any{
			"key":        entry.Key,
			"value":      entry.Value,
			"created_at": time.Unix(0, entry.CreatedAt).UTC(),
			"updated_at": time.Unix(0, entry.UpdatedAt).UTC(),
		})
	}

	v, err := store.Get(ctx, key)
	if err != nil {
		return keyError(key, err)
	}
	_, err = fmt.Fprintln(out, v)
	return err
}

// matchKeys filters keys by a doublestar glob. An empty pattern keeps all.
func matchKeys(keys []string, pattern string) []string {
	if pattern == "" {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if ok, _ := doublestar.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out
}

func keyError(key string, err error) error {
	if errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("key %q not found", key)
	}
	return fmt.Errorf("get %q: %w", key, err)
}
