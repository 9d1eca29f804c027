package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchagent/internal/acquisition"
	"github.com/mohammad-safakhou/searchagent/internal/agent"
)

const debugPreviewChars = 200

func askCMD(cfgPath *string) *cobra.Command {
	var debug bool

	ask := &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer one question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			ans, err := runAsk(ctx, a.agent, strings.Join(args, " "), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printAnswer(cmd.OutOrStdout(), ans, debug)
			return nil
		},
	}
	ask.Flags().BoolVar(&debug, "debug", false, "list the scraped sources after the answer")

	return ask
}

type streamer interface {
	Stream(ctx context.Context, query string, emit agent.Emitter) (agent.Answer, error)
}

// runAsk streams one question, showing progress on a spinner written to w.
func runAsk(ctx context.Context, s streamer, query string, w io.Writer) (agent.Answer, error) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	sp.Start()
	defer sp.Stop()

	return s.Stream(ctx, query, func(ev agent.Event) {
		if ev.Type != agent.EventProgress {
			return
		}
		sp.Lock()
		sp.Suffix = " " + ev.Message
		sp.Unlock()
	})
}

func printAnswer(w io.Writer, ans agent.Answer, debug bool) {
	if ans.Cached {
		fmt.Fprintln(w, color.YellowString("(from a similar past query, similarity %.2f: %s)", ans.Score, ans.MatchedQuery))
	}
	fmt.Fprintln(w, ans.Summary)

	if ans.StoreErr != nil {
		fmt.Fprintln(w, color.YellowString("warning: answer was not remembered: %v", ans.StoreErr))
	}
	if debug {
		printSources(w, ans.Sources)
	}
}

func printSources(w io.Writer, sources []acquisition.SourceResult) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(w)
	fmt.Fprintln(w, bold("Sources"))
	if len(sources) == 0 {
		fmt.Fprintln(w, "  none fetched")
		return
	}
	for _, src := range sources {
		status := color.GreenString("%s", src.Status)
		if src.Status != acquisition.StatusOK {
			status = color.RedString("%s", src.Status)
		}
		fmt.Fprintf(w, "%d. [%s] %s\n   %s\n", src.Rank, status, bold(src.Title), cyan(src.URL))
		fmt.Fprintf(w, "   %s\n", preview(src.Text, debugPreviewChars))
	}
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
