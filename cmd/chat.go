package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/agent"
	"github.com/xkilldash9x/cursorctl/internal/observability"
)

const banner = `cursorctl: tell me what to do with the mouse and keyboard.
Try "move to center", "click at 200, 100", "type hello and press enter" or "help".
Type "exit" to leave.
`

const prompt = "cursorctl > "

var exitWords = map[string]bool{"exit": true, "quit": true, "q": true}

type inputLine struct {
	text string
	err  error
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}
	logger := observability.GetLogger()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}

	interactive := false
	if f, ok := cmd.InOrStdin().(*os.File); ok {
		interactive = isTerminal(f)
	}
	return chat(ctx, rt, cmd.InOrStdin(), cmd.OutOrStdout(), opts.json, interactive, logger)
}

// chat runs the REPL until input ends, an exit word or farewell is read, or ctx is done. The
// dispatch worker and the conversation loop share one errgroup so either stopping stops both.
func chat(ctx context.Context, rt *agent.Runtime, in io.Reader, out io.Writer, asJSON, interactive bool, logger *zap.Logger) error {
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	lines := readLines(loopCtx, in)
	g, gctx := errgroup.WithContext(loopCtx)

	g.Go(func() error {
		rt.Start(gctx)
		<-gctx.Done()
		rt.Stop()
		return nil
	})

	g.Go(func() error {
		defer stopLoop()
		if interactive {
			fmt.Fprint(out, banner)
		}
		for {
			if interactive {
				fmt.Fprint(out, prompt)
			}
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if line.err != nil {
					return fmt.Errorf("error reading input: %w", line.err)
				}

				text := strings.TrimSpace(line.text)
				if text == "" {
					continue
				}
				if exitWords[strings.ToLower(text)] {
					fmt.Fprintln(out, "Bye.")
					return nil
				}

				reply, handled := handleLine(gctx, rt, text, logger)
				if !handled {
					fmt.Fprintln(out, "Something went wrong handling that; please try again.")
					continue
				}
				if err := printReply(out, reply, asJSON); err != nil {
					return err
				}
				if reply.Intent.Kind == schemas.IntentFarewell {
					return nil
				}
			}
		}
	})

	err := g.Wait()
	logger.Debug("Chat session ended.", zap.String("session_id", rt.Session.ID()))
	return err
}

// handleLine runs one command, recovering from panics so one bad line cannot end the session.
func handleLine(ctx context.Context, rt *agent.Runtime, text string, logger *zap.Logger) (reply agent.Reply, handled bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Command panicked.", zap.Any("panic", r), zap.Stack("stack"))
			handled = false
		}
	}()
	return rt.Session.Handle(ctx, text), true
}

// readLines scans in on its own goroutine. The channel closes at end of input; the goroutine
// stops sending once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan inputLine {
	lines := make(chan inputLine)
	send := func(l inputLine) bool {
		select {
		case lines <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if !send(inputLine{text: scanner.Text()}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(inputLine{err: err})
		}
	}()
	return lines
}
