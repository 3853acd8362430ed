package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/diagram"
	"github.com/matzehuels/typegraph/pkg/pipeline"
	"github.com/matzehuels/typegraph/pkg/viewport"
)

// fitCommand creates the fit command, which computes the camera transform
// that shows a whole diagram.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		flags   layoutFlags
		width   float64
		height  float64
		padding float64
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "fit [model]",
		Short: "Compute the viewport fit for a diagram",
		Long: `Compute the viewport fit for a diagram.

Cards are measured from the layout metrics. The scale never exceeds 1 and the
diagram is centred inside the viewport minus the padding.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: modelArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}
			if !cmd.Flags().Changed("padding") {
				padding = c.cfg().Viewport.Padding
			}
			vp := viewport.Size{Width: width, Height: height}
			return c.runFit(cmd.Context(), args[0], opts, vp, padding, flags.noCache, asJSON)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&width, "width", 1280, "viewport width")
	cmd.Flags().Float64Var(&height, "height", 800, "viewport height")
	cmd.Flags().Float64Var(&padding, "padding", viewport.DefaultPadding, "outer padding")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the fit as JSON")

	return cmd
}

// recordingCamera keeps the last transform applied by a controller.
type recordingCamera struct {
	transform viewport.Transform
	silent    bool
}

func (r *recordingCamera) Zoom(scale float64) { r.transform.Scale = scale }
func (r *recordingCamera) Pan(x, y float64)   { r.transform.X, r.transform.Y = x, y }
func (r *recordingCamera) SetSilent(on bool)  { r.silent = on }

func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, vp viewport.Size, padding float64, noCache, asJSON bool) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("viewport width and height must be positive")
	}
	model, err := loadModel(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
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

	d := diagram.New(model, connect.NewRecorder(), diagram.Options{
		Metrics: opts.Metrics,
		Saved:   positions,
		Padding: &padding,
		Logger:  c.Logger,
	})
	defer d.Close()
	d.MeasureFromLayout(opts.Metrics)

	camera := &recordingCamera{}
	ctrl := viewport.NewController(camera, viewport.WithWindow(c.cfg().Viewport.Window()))
	moved, err := d.Center(ctrl, vp)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		resp := struct {
			Fitted bool                `json:"fitted"`
			Fit    *viewport.Transform `json:"fit,omitempty"`
		}{Fitted: moved}
		if moved {
			resp.Fit = &camera.transform
		}
		return enc.Encode(resp)
	}

	if !moved {
		printInfo("Empty diagram, camera unchanged")
		return nil
	}
	printKeyValue("scale", fmt.Sprintf("%.4f", camera.transform.Scale))
	printKeyValue("offset x", fmt.Sprintf("%.2f", camera.transform.X))
	printKeyValue("offset y", fmt.Sprintf("%.2f", camera.transform.Y))
	printKeyValue("viewport", fmt.Sprintf("%gx%g (padding %g)", vp.Width, vp.Height, padding))
	return nil
}
