// Package cli implements resumectl, a command line front end for the agent.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/bootstrap"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
)

const app = "resumectl"

// Builder creates the application for one invocation. The returned func
// releases it.
type Builder func(ctx context.Context, v *viper.Viper) (*bootstrap.App, func(), error)

// DefaultBuilder loads configuration the same way the API does, with an
// optional --config file, and logs to stderr.
func DefaultBuilder(ctx context.Context, v *viper.Viper) (*bootstrap.App, func(), error) {
	var (
		cfg config.Config
		err error
	)
	if file := v.GetString("config"); file != "" {
		cfg, err = config.LoadFile(file)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if v.GetBool("debug") {
		level = "debug"
	}
	format := "console"
	if v.GetBool("json-logs") {
		format = "json"
	}
	logger, err := telemetry.NewLogger(format, level)
	if err != nil {
		return nil, nil, err
	}
	a, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, func() {
		a.Close(context.Background())
		_ = logger.Sync()
	}, nil
}

type cli struct {
	v     *viper.Viper
	build Builder
	app   *bootstrap.App
	close func()
}

// NewRootCommand returns the resumectl command tree. The application built
// for a run is not released; use Execute for that.
func NewRootCommand(build Builder) *cobra.Command {
	root, _ := newRoot(build)
	return root
}

func newRoot(build Builder) (*cobra.Command, *cli) {
	if build == nil {
		build = DefaultBuilder
	}
	c := &cli{v: viper.New(), build: build}

	root := &cobra.Command{
		Use:           app,
		Short:         "resumectl edits a resume with plain-language commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			a, closeFn, err := c.build(cmd.Context(), c.v)
			if err != nil {
				return err
			}
			c.app, c.close = a, closeFn
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "a config file (default is resume-agent.yaml in current directory)")
	flags.StringP("user", "u", "local", "user id whose history is edited")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.Bool("json-logs", false, "json format for logging")
	for _, name := range []string{"config", "user", "debug", "json-logs"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}
	c.v.SetEnvPrefix("RESUMECTL")
	c.v.AutomaticEnv()

	root.AddCommand(
		c.runCommand(),
		c.scoreCommand(),
		c.importCommand(),
		c.undoCommand(),
		c.redoCommand(),
		c.historyCommand(),
		c.designCommand(),
		c.extractCommand(),
	)
	return root, c
}

// Execute runs resumectl with os.Args and releases the application afterwards.
func Execute(ctx context.Context) error {
	root, c := newRoot(nil)
	err := root.ExecuteContext(ctx)
	if c.close != nil {
		c.close()
	}
	return err
}

func (c *cli) user() string {
	return strings.TrimSpace(c.v.GetString("user"))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readFileOrStdin(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
