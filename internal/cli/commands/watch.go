package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/shadercat/internal/cli/output"
	"github.com/leapstack-labs/shadercat/internal/shader"
	"github.com/leapstack-labs/shadercat/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload custom shaders when they change on disk",
		Long: `Watch the user shader directories and rescan them whenever a shader
bundle is added, changed or removed. A line is printed after every rescan.

A user directory that does not exist yet is picked up as soon as it is
created.

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContextWithoutStore(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, cmdCtx)
		},
	}
}

func runWatch(ctx context.Context, cmdCtx *CommandContext) error {
	cat := cmdCtx.Catalog
	r := cmdCtx.Renderer

	w := watch.New(cat, cat.UserRoots(), watch.Options{
		Debounce: cmdCtx.Cfg.Watch.Debounce,
		Logger:   cmdCtx.Logger,
	})

	changes := cat.Subscribe()
	defer cat.Unsubscribe(changes)

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return w.Run(egctx)
	})

	eg.Go(func() error {
		select {
		case <-w.Ready():
			r.Println(r.Muted(fmt.Sprintf("Watching %s", strings.Join(cat.UserRoots(), ", "))))
			printCustom(r, cat)
		case <-egctx.Done():
			return nil
		}

		for {
			select {
			case <-egctx.Done():
				return nil
			case <-changes:
				printCustom(r, cat)
			}
		}
	})

	return eg.Wait()
}

func printCustom(r *output.Renderer, cat *shader.Catalog) {
	names := cat.CustomNames()
	if len(names) == 0 {
		r.Println("custom shaders: (none)")
		return
	}
	r.Printf("custom shaders (%d): %s\n", len(names), strings.Join(names, ", "))
}
