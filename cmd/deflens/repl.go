package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"deflens/internal/pipeline"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively describe expressions, with tab completion",
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession(context.Background())
		runRepl(s, stdout)
	},
}

func runRepl(s *session, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	historyFile := filepath.Join(os.TempDir(), ".deflens_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "Type an expression to describe it. Commands: :ret <expr>, :new <expr>, :run <js>, :quit")
	for {
		input, err := line.Prompt("deflens> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out)
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if s.eval(out, input) {
			return
		}
	}
}

// eval handles one line of input and reports whether the loop should end.
func (s *session) eval(out io.Writer, input string) (quit bool) {
	event, expr, isNew := pipeline.EventDescribe, input, false
	switch {
	case input == ":quit" || input == ":q":
		return true
	case strings.HasPrefix(input, ":ret "):
		event, expr = pipeline.EventFunction, input[len(":ret "):]
	case strings.HasPrefix(input, ":new "):
		event, expr, isNew = pipeline.EventFunction, input[len(":new "):], true
	case strings.HasPrefix(input, ":run "):
		if err := s.realm.Run("repl", input[len(":run "):]); err != nil {
			errColor.Fprintln(out, err)
		}
		return false
	case strings.HasPrefix(input, ":"):
		fmt.Fprintf(out, "unknown command %s\n", input)
		return false
	}

	q, err := s.query(expr, isNew)
	if err != nil {
		errColor.Fprintln(out, err)
		return false
	}
	printOutcome(out, expr, s.pipe.Dispatch(event, q))
	return false
}

// complete offers described member names for the expression being typed.
func (s *session) complete(input string) []string {
	head, prefix := "", input
	for _, cmd := range []string{":ret ", ":new "} {
		if strings.HasPrefix(input, cmd) {
			head, prefix = cmd, input[len(cmd):]
		}
	}
	receiver, partial := "", prefix
	if dot := strings.LastIndex(prefix, "."); dot >= 0 {
		receiver, partial = prefix[:dot], prefix[dot+1:]
	}

	var out []string
	for _, name := range s.members(receiver) {
		if !strings.HasPrefix(name, partial) {
			continue
		}
		if receiver != "" {
			name = receiver + "." + name
		}
		out = append(out, head+name)
	}
	return out
}
