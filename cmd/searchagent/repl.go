package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func replCMD(cfgPath *string) *cobra.Command {
	var debug bool

	repl := &cobra.Command{
		Use:   "repl",
		Short: "Ask questions interactively until exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          color.CyanString("searchagent> "),
				HistoryFile:     filepath.Join(os.TempDir(), ".searchagent_history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			fmt.Fprintln(rl.Stdout(), "Ask a question, or type exit to quit.")
			for ctx.Err() == nil {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				q := strings.TrimSpace(line)
				switch q {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				ans, err := runAsk(ctx, a.agent, q, rl.Stderr())
				if err != nil {
					fmt.Fprintln(rl.Stderr(), color.RedString("%s", describe(err)))
					continue
				}
				printAnswer(rl.Stdout(), ans, debug)
			}
			return nil
		},
	}
	repl.Flags().BoolVar(&debug, "debug", false, "list the scraped sources after each answer")

	return repl
}
