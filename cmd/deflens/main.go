package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"deflens/internal/config"
	"deflens/internal/crawler"
	"deflens/internal/engine"
	"deflens/internal/env"
	"deflens/internal/env/jsvm"
	"deflens/internal/index"
	"deflens/internal/pipeline"
	"deflens/internal/resolver"
	"deflens/internal/scope"
)

var (
	rootCmd = &cobra.Command{
		Use:   "deflens",
		Short: "Describe JavaScript values from definition documents",
	}
	configPath  string
	defsFlag    []string
	preludeFlag []string
	quiet       bool
	checkJSON   bool

	stdout io.Writer = os.Stdout
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "deflens.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringSliceVar(&defsFlag, "defs", nil, "Definition documents, replacing the configured ones")
	rootCmd.PersistentFlags().StringSliceVar(&preludeFlag, "prelude", nil, "Scripts that build the environment, replacing the configured ones")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	returnsCmd.Flags().Bool("new", false, "Treat the expression as a constructor used with new")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(returnsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(replCmd)
}

// session is a loaded environment with its handler pipeline.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	realm  *jsvm.Realm
	engine *engine.Engine
	pipe   *pipeline.Pipeline
	report *index.Report
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if len(defsFlag) > 0 {
		cfg.Defs.Files = defsFlag
		cfg.Defs.Dirs = nil
	}
	if len(preludeFlag) > 0 {
		cfg.Environment.Prelude = preludeFlag
	}
	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// openSession runs the prelude, builds the association table against the
// resulting global object and registers the engine.
func openSession(ctx context.Context) (*session, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	realm, err := jsvm.New()
	if err != nil {
		return nil, err
	}
	for _, path := range cfg.Environment.Prelude {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prelude: %w", err)
		}
		if err := realm.Run(path, string(src)); err != nil {
			return nil, err
		}
	}

	progress("🚀 Loading %d definition sources...\n", len(cfg.Defs.Files)+len(cfg.Defs.Dirs))
	start := time.Now()
	idx := index.NewIndexer(crawler.NewCrawler(),
		index.WithValidation(cfg.Defs.Validate),
		index.WithLogger(logger),
	)
	table, report, err := idx.Build(ctx, realm.Global(), index.Sources{Files: cfg.Defs.Files, Dirs: cfg.Defs.Dirs})
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}
	progress("✅ Table built in %v. %d objects described.\n", time.Since(start), table.Len())

	eng := engine.New(table,
		engine.WithMaxDepth(cfg.Environment.MaxPrototypeDepth),
		engine.WithLogger(logger),
	)
	pipe := pipeline.New(logger)
	eng.Register(pipe)

	return &session{cfg: cfg, logger: logger, realm: realm, engine: eng, pipe: pipe, report: report}, nil
}

func mustSession(ctx context.Context) *session {
	s, err := openSession(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	return s
}

func progress(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// query builds a request for the last segment of a dotted expression such as
// "document.body.appendChild". The receiver is evaluated in the realm; the
// expression itself is evaluated too, and left unknown if that throws.
func (s *session) query(expr string, isNew bool) (*resolver.Query, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	q := &resolver.Query{Window: s.realm.Global(), IsConstructor: isNew}

	if dot := strings.LastIndex(expr, "."); dot >= 0 {
		q.Token = resolver.Token{Type: resolver.TokenProperty, String: expr[dot+1:]}
		parent, err := s.realm.Eval(expr[:dot])
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", expr[:dot], err)
		}
		q.Parent = parent
	} else {
		q.Token = resolver.Token{Type: resolver.TokenVariable, String: expr}
		q.Parent = s.realm.Global()
	}

	if v, err := s.realm.Eval(expr); err == nil {
		q.Context = v
	}
	return q, nil
}

// siteQuery builds a request for a token found in a source file. A receiver
// the realm cannot evaluate, such as a local variable, stays unknown so the
// request declines instead of failing. A locally bound name is never
// evaluated as the global of the same name.
func (s *session) siteQuery(site scope.Site, sc resolver.Scope) *resolver.Query {
	q := &resolver.Query{
		Token:         site.Token,
		Window:        s.realm.Global(),
		IsConstructor: site.New,
		Scope:         sc,
	}
	switch {
	case site.Object != "":
		if v, err := s.realm.Eval(site.Object); err == nil {
			q.Parent = v
		}
	case site.Token.Type == resolver.TokenVariable:
		q.Parent = s.realm.Global()
		if sc != nil && sc.IsBound(site.Token.String) {
			return q
		}
	}
	if q.Parent == nil {
		return q
	}
	if v, err := s.realm.Eval(site.Expr); err == nil {
		q.Context = v
	}
	return q
}

// members lists completion candidates for the value of expr.
func (s *session) members(expr string) []string {
	var obj env.Object = s.realm.Global()
	if expr != "" {
		v, err := s.realm.Eval(expr)
		if err != nil {
			return nil
		}
		o, ok := env.AsObject(v)
		if !ok {
			return nil
		}
		obj = o
	}
	names, err := s.engine.Resolver().Members(obj, s.realm.Global())
	if err != nil {
		s.logger.Debug("member listing failed", "expr", expr, "error", err)
	}
	return names
}

var (
	nameColor   = color.New(color.Bold)
	typeColor   = color.New(color.FgCyan)
	returnColor = color.New(color.FgGreen)
	docColor    = color.New(color.Faint)
	errColor    = color.New(color.FgRed)
)
