package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/recap/internal/domain"
)

type CleanupOptions struct {
	GlobalOptions

	Output string
}

func DefaultCleanupOptions() *CleanupOptions {
	return &CleanupOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        jsonFormat,
	}
}

func NewCmdCleanup() *cobra.Command {
	o := DefaultCleanupOptions()
	cmd := &cobra.Command{
		Use:   "cleanup JOB_ID",
		Short: "Delete the segments, thumbnails, outputs, temp files and upload of a job.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *CleanupOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: json or yaml")
}

func (o *CleanupOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if err := domain.ValidateJobID(args[0]); err != nil {
		return fmt.Errorf("job id %q: %w", args[0], err)
	}
	return validateOutput(o.Output)
}

func (o *CleanupOptions) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	app, err := o.App()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	report, err := app.Pipeline.Cleanup(ctx, args[0])
	if err != nil {
		return fmt.Errorf("cleaning up job %s: %w", args[0], err)
	}
	return printResult(cmd.OutOrStdout(), report, o.Output)
}
