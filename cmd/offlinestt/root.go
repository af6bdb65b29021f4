package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/offlinestt/bootstrap"
	"github.com/kbukum/offlinestt/config"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
)

// cli carries the state shared by all subcommands of one invocation.
type cli struct {
	configFile string
	envFile    string
	stderr     io.Writer

	app *bootstrap.App
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}
	code := errors.ExitCodeOf(err)
	fields := logger.Fields(logger.FieldExitCode, code)
	if appErr, ok := errors.AsAppError(err); ok {
		for k, v := range appErr.Details {
			fields[k] = v
		}
	}
	c.logger().WithError(err).Error("offlinestt failed", fields)
	return code
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "offlinestt",
		Short:         "Record speech and transcribe it offline with Whisper",
		Long:          "offlinestt records from the default input device with SoX, normalizes audio with ffmpeg and transcribes it with a local faster-whisper model into Markdown.",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.InvalidConfig(err.Error())
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: ./offlinestt.yml, ./config.yml or the user config directory)")
	pf.StringVar(&c.envFile, "env-file", "", ".env file loaded before reading the environment")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console, pretty, json")
	pf.String("recordings-dir", "", "directory of recordings")
	pf.String("transcripts-dir", "", "directory transcripts are written to")
	pf.String("model", "", "model size, e.g. small, medium, large-v3")
	pf.String("language", "", `transcription language code; "auto" needs --backend sidecar`)
	pf.String("backend", "", "transcription backend: cli or sidecar")

	root.AddCommand(
		c.recordCommand(),
		c.transcribeCommand(),
		c.listCommand(),
		c.doctorCommand(),
		versionCommand(),
	)
	return root
}

// load reads the configuration, with flags set on cmd taking
// precedence, and builds the application.
func (c *cli) load(cmd *cobra.Command) (*bootstrap.App, error) {
	loaded, err := config.Load(
		config.WithConfigFile(c.configFile),
		config.WithEnvFile(c.envFile),
		config.WithFlags(cmd.Flags()),
	)
	if err != nil {
		return nil, err
	}
	app, err := bootstrap.NewApp(loaded)
	if err != nil {
		return nil, errors.Internal(err)
	}
	c.app = app
	return app, nil
}

func (c *cli) logger() *logger.Logger {
	if c.app != nil {
		return c.app.Logger
	}
	cfg := &logger.Config{}
	cfg.ApplyDefaults()
	return logger.NewWithWriter(cfg, bootstrap.DefaultName, c.stderr)
}

// usageArgs reports argument errors as invalid usage.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.InvalidConfig(err.Error())
		}
		return nil
	}
}
