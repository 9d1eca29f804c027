package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchagent/internal/agent"
)

var version = "dev"

// Exit codes.
const (
	exitFailure     = 1
	exitInvalid     = 2
	exitNoAnswer    = 3
	exitUnavailable = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCMD().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %s", describe(err)))
		os.Exit(exitCode(err))
	}
}

func newRootCMD() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "searchagent",
		Short:         "Answer informational questions from the web, remembering similar past answers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is fine
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.json)")

	root.AddCommand(
		askCMD(&cfgPath),
		replCMD(&cfgPath),
		serveCMD(&cfgPath),
		mcpCMD(&cfgPath),
		migrateCMD(&cfgPath),
		historyCMD(&cfgPath),
	)
	return root
}

// describe returns the user-facing text for err. Pipeline failures map to
// their fixed messages; anything else (config, startup) is shown as is.
func describe(err error) string {
	if msg := agent.UserMessage(err); msg != agent.MsgInternal {
		return msg
	}
	return err.Error()
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, agent.ErrInvalidQuery):
		return exitInvalid
	case errors.Is(err, agent.ErrNoResults), errors.Is(err, agent.ErrEmptySummary):
		return exitNoAnswer
	case errors.Is(err, agent.ErrEmbeddingUnavailable):
		return exitUnavailable
	default:
		return exitFailure
	}
}
