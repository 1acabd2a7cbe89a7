// Package main provides the CLI entry point for hexcore-cli.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hexcore/hexcore-cli/internal/api"
)

const version = "1.0.0"

// globalFlags are shared by every command.
type globalFlags struct {
	url      string
	username string
	password string
	timeout  time.Duration
	output   string
	verbose  bool
}

// app carries the streams and flags of one invocation.
type app struct {
	flags  globalFlags
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hexcore",
		Short: "Hydra Node Manager CLI",
		Long: `hexcore-cli manages Hydra heads, nodes and wallet accounts on a
Hydra main cluster.

Start the interactive dashboard:
  hexcore start --url https://api.example.com -u admin

Or use one-shot commands:
  hexcore head list --url https://api.example.com
  hexcore status --url https://api.example.com`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.url, "url", "", "API server URL (e.g., https://api.hexcore.io.vn)")
	pf.StringVarP(&a.flags.username, "username", "u", "", "Username for authentication")
	pf.StringVarP(&a.flags.password, "password", "p", "", "Password for authentication")
	pf.DurationVar(&a.flags.timeout, "timeout", api.DefaultTimeout, "Request timeout")
	pf.StringVarP(&a.flags.output, "output", "o", "table", "Output format: table, json or yaml")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "Verbose output")
	_ = root.MarkPersistentFlagRequired("url")

	root.AddCommand(
		a.startCmd(),
		a.headCmd(),
		a.accountCmd(),
		a.nodeCmd(),
		a.statusCmd(),
	)
	return root
}

// logger builds the command logger. Dashboard sessions pass their own writer.
func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// client creates the API client and logs in when a username was given.
func (a *app) client(ctx context.Context, logger *slog.Logger) (*api.Client, error) {
	if a.flags.username != "" && a.flags.password == "" {
		password, err := a.promptPassword(fmt.Sprintf("Password for %s: ", a.flags.username))
		if err != nil {
			return nil, err
		}
		a.flags.password = password
	}

	client := api.NewClient(api.Config{
		URL:      a.flags.url,
		Timeout:  a.flags.timeout,
		Username: a.flags.username,
		Password: a.flags.password,
		Logger:   logger,
	})

	if a.flags.username != "" {
		if err := client.Login(ctx); err != nil {
			return nil, err
		}
	}
	return client, nil
}
