// Command headshots runs the headshot and story generators from a workstation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/dmorgan81/headshots/internal/config"
	"github.com/dmorgan81/headshots/internal/handler"
	"github.com/dmorgan81/headshots/internal/inject"
	"github.com/dmorgan81/headshots/internal/log"
	"github.com/dmorgan81/headshots/internal/payload"
	"github.com/dmorgan81/headshots/internal/prompt"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var outDir string

	root := &cobra.Command{
		Use:          "headshots",
		Short:        "Generate professional headshots and short stories with Gemini",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&outDir, "out", "o", "headshots-out", "directory to write results to")

	setup := func(cmd *cobra.Command) (context.Context, *do.Injector, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		logger := log.New(cmd.ErrOrStderr(), log.ParseLevel(cfg.LogLevel))
		ctx := log.NewContext(cmd.Context(), logger)
		return ctx, inject.SetupLocal(ctx, cfg, outDir), nil
	}

	root.AddCommand(newGenerateCmd(setup), newStoryCmd(setup), newTasksCmd(setup))
	return root
}

type setupFunc func(*cobra.Command) (context.Context, *do.Injector, error)

func newGenerateCmd(setup setupFunc) *cobra.Command {
	var taskIDs []int

	cmd := &cobra.Command{
		Use:   "generate PHOTO",
		Short: "Generate every headshot style for a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photo, err := payload.EncodeFile(args[0])
			if err != nil {
				return err
			}

			ctx, injector, err := setup(cmd)
			if err != nil {
				return err
			}
			h, err := do.Invoke[*handler.Handler](injector)
			if err != nil {
				return err
			}

			printer := newProgressPrinter(cmd.OutOrStdout())
			out, err := h.WithProgress(printer.Print).Generate(ctx, photo, taskIDs, false)
			if err != nil {
				return err
			}
			printer.Summary(out)
			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&taskIDs, "task", "t", nil, "only generate these style ids")
	return cmd
}

func newStoryCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "story IDEA...",
		Short: "Write a short romantic story from an idea",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, injector, err := setup(cmd)
			if err != nil {
				return err
			}
			h, err := do.Invoke[*handler.StoryHandler](injector)
			if err != nil {
				return err
			}
			out, err := h.Handle(ctx, handler.StoryInput{Idea: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out.Story)
			return err
		},
	}
}

func newTasksCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the configured headshot styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, injector, err := setup(cmd)
			if err != nil {
				return err
			}
			catalog, err := do.Invoke[*prompt.Catalog](injector)
			if err != nil {
				return err
			}
			for _, t := range catalog.Tasks() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", t.ID, t.Label)
			}
			return nil
		},
	}
}
