package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"deflens/internal/pipeline"
	"deflens/internal/scope"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Load and validate definition documents",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			defsFlag = args
		}
		if checkJSON {
			quiet = true
		}
		s := mustSession(context.Background())

		if checkJSON {
			if err := s.report.Encode(stdout); err != nil {
				log.Fatalf("Failed to write report: %v", err)
			}
			return
		}
		for _, doc := range s.report.Documents {
			fmt.Fprintf(stdout, "📄 %s (%s): %d recorded, %d overwritten, %d missing\n",
				nameColor.Sprint(doc.Name), doc.Path, doc.Stats.Recorded, doc.Stats.Overwritten, doc.Stats.Missing)
		}
		fmt.Fprintf(stdout, "🎉 %d documents, %d objects described\n", len(s.report.Documents), s.report.Entries)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <expr>",
	Short: "Describe the value an expression evaluates to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSession(context.Background())
		q, err := s.query(args[0], false)
		if err != nil {
			log.Fatalf("Invalid expression: %v", err)
		}
		out := s.pipe.Dispatch(pipeline.EventDescribe, q)
		if !printOutcome(stdout, args[0], out) {
			os.Exit(1)
		}
	},
}

var returnsCmd = &cobra.Command{
	Use:   "returns <expr>",
	Short: "Show the value standing for the result of calling a function",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		isNew, _ := cmd.Flags().GetBool("new")
		s := mustSession(context.Background())
		q, err := s.query(args[0], isNew)
		if err != nil {
			log.Fatalf("Invalid expression: %v", err)
		}
		out := s.pipe.Dispatch(pipeline.EventFunction, q)
		if !printOutcome(stdout, args[0], out) {
			os.Exit(1)
		}
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <file.js> <offset>",
	Short: "Describe the token at a byte offset of a source file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		offset, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid offset: %v", err)
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read source: %v", err)
		}

		ctx := context.Background()
		s := mustSession(ctx)
		if err := s.completeAt(ctx, stdout, src, offset); err != nil {
			log.Fatalf("Failed to complete: %v", err)
		}
	},
}

// completeAt describes the token at offset of src and, when the token is
// called, what the call returns.
func (s *session) completeAt(ctx context.Context, w io.Writer, src []byte, offset int) error {
	f, err := scope.NewAnalyzer().Parse(ctx, src)
	if err != nil {
		return err
	}
	defer f.Close()

	site, ok := f.TokenAt(offset)
	if !ok {
		return fmt.Errorf("no token at offset %d", offset)
	}
	q := s.siteQuery(site, f.Scope(offset))

	printOutcome(w, site.Expr, s.pipe.Dispatch(pipeline.EventDescribe, q))
	if site.Callee {
		printOutcome(w, site.Expr+"()", s.pipe.Dispatch(pipeline.EventFunction, q))
	}
	return nil
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the build report as JSON")
}
