package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/focus/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheKeys lists the keys held in the store.
func (r *Runner) CacheKeys(ctx context.Context, cmd *cli.Command) error {
	kv, err := r.store()
	if err != nil {
		return err
	}

	keys, err := kv.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return r.writePlain("Store is empty\n")
	}
	for _, k := range keys {
		r.writePlain("%s\n", k)
	}
	return nil
}

// CacheGet prints a single value.
func (r *Runner) CacheGet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	kv, err := r.store()
	if err != nil {
		return err
	}
	value, err := kv.Lookup(ctx, key)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", value)
}

// CacheClear deletes the named keys, or all keys with --all.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	keys := cmd.Args().Slice()
	all := cmd.Bool("all")
	if len(keys) == 0 && !all {
		return fmt.Errorf("%w: pass keys or --all", shared.ErrMissingArgument)
	}
	if len(keys) > 0 && all {
		return fmt.Errorf("%w: cannot combine keys with --all", shared.ErrInvalidArgument)
	}

	kv, err := r.store()
	if err != nil {
		return err
	}
	if all {
		if keys, err = kv.Keys(ctx); err != nil {
			return err
		}
	}
	if err := kv.Delete(ctx, keys...); err != nil {
		return err
	}

	r.logger.Info("store cleared", "keys", len(keys))
	return r.writePlain("✓ Removed %d keys\n", len(keys))
}
