package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bnema/recap/internal/domain"
)

var stageNames = []string{
	string(domain.StageIngest),
	string(domain.StageAudio),
	string(domain.StageTranscribe),
	string(domain.StageMoments),
	string(domain.StageSummarize),
	string(domain.StageQuickSummary),
	string(domain.StageCleanup),
}

type StageOptions struct {
	GlobalOptions

	Source      string
	OptionsFile string
	Output      string

	stage domain.Stage
}

func DefaultStageOptions() *StageOptions {
	return &StageOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        jsonFormat,
	}
}

func NewCmdStage() *cobra.Command {
	o := DefaultStageOptions()
	cmd := &cobra.Command{
		Use:   "stage STAGE JOB_ID",
		Short: "Run a single pipeline stage of a job.",
		Long: fmt.Sprintf("Run one stage (%s). Every stage except ingest reads its inputs "+
			"from the job log; ingest needs --source.", strings.Join(stageNames, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: stageNames,
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

func (o *StageOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.StringVar(&o.Source, "source", o.Source, "Recording to ingest (ingest stage only)")
	fs.StringVarP(&o.OptionsFile, "options", "f", o.OptionsFile, "JSON or YAML stage options file, - for stdin")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: json or yaml")
}

func (o *StageOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	stage, ok := domain.ParseStage(args[0])
	if !ok {
		return fmt.Errorf("unknown stage %q, expected one of %s", args[0], strings.Join(stageNames, ", "))
	}
	o.stage = stage
	return nil
}

func (o *StageOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if err := domain.ValidateJobID(args[1]); err != nil {
		return fmt.Errorf("job id %q: %w", args[1], err)
	}
	if o.stage == domain.StageIngest && o.Source == "" {
		return fmt.Errorf("the ingest stage needs --source")
	}
	if o.stage != domain.StageIngest && o.Source != "" {
		return fmt.Errorf("--source only applies to the ingest stage")
	}
	return validateOutput(o.Output)
}

func (o *StageOptions) Run(ctx context.Context, cmd *cobra.Command, args []string) error {
	raw, err := readOptions(o.OptionsFile)
	if err != nil {
		return err
	}

	app, err := o.App()
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	jobID := args[1]
	var result any
	if o.stage == domain.StageIngest {
		source, err := filepath.Abs(o.Source)
		if err != nil {
			return err
		}
		result, err = app.Pipeline.Ingest(ctx, jobID, source, filepath.Base(source))
		if err != nil {
			return fmt.Errorf("%s stage: %w", o.stage, err)
		}
	} else {
		result, err = app.Pipeline.RunStage(ctx, jobID, o.stage, raw)
		if err != nil {
			return fmt.Errorf("%s stage: %w", o.stage, err)
		}
	}
	return printResult(cmd.OutOrStdout(), result, o.Output)
}
