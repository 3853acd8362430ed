package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// browseCommand creates the interactive browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags layoutFlags
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "browse [model]",
		Short: "Browse a content model interactively",
		Long: `Browse a content model interactively.

Select a type to highlight the types it is connected to, move its card with
the arrow keys and re-centre the camera with f. With --save the positions
are written back to the positions file on exit.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modelArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runBrowse(cmd.Context(), args[0], opts, flags, save)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "write positions back on exit")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, opts pipeline.Options, flags layoutFlags, save bool) error {
	model, err := loadModel(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	positions, err := runner.ComputePositions(ctx, model, opts)
	if err != nil {
		return fmt.Errorf("compute positions: %w", err)
	}
	model, err = pipeline.PrepareModel(model, opts)
	if err != nil {
		return err
	}

	padding := c.cfg().Viewport.Padding
	d := diagram.New(model, connect.NewRecorder(), diagram.Options{
		Metrics:  opts.Metrics,
		Saved:    positions,
		Strategy: opts.ForcedStrategy(),
		Padding:  &padding,
		Logger:   c.Logger,
	})
	defer d.Close()
	d.MeasureFromLayout(opts.Metrics)

	m := NewBrowseModel(d, c.cfg().Viewport.Window(), nil)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("browse: %w", err)
	}

	if !save {
		return nil
	}
	path := flags.positions
	if path == "" {
		path = defaultPositionsPath(input)
	}
	if err := writePositions(path, d.Positions()); err != nil {
		return err
	}
	printSuccess("Saved positions")
	printFile(path)
	return nil
}
