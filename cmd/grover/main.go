package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/grover"
)

// Set via -ldflags at build time.
var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grover [expr...]",
		Short: "Evaluate arithmetic expressions with $variables",
		Long: `grover evaluates each argument as an expression, in order, sharing one set
of variables. With --in, the file's lines are evaluated before any arguments.
With no arguments and no --in file, it starts an interactive session.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         run,
	}
	cmd.Flags().StringP("in", "i", "", "input file with one expression per line (- for stdin)")
	cmd.Flags().String("fmt", "%g", "result formatting string")
	cmd.Flags().IntP("radix", "r", 10, "radix of numeric literals, 2 to 36")
	cmd.Flags().Uint("prec", 64, "precision of exponentiation in bits")
	cmd.Flags().StringArray("given", nil, "$name=expr variable definition (any number of times)")
	cmd.Flags().Bool("postfix", false, "print the postfix form of each expression")
	cmd.Flags().StringP("config", "c", "", "YAML session file")
	return cmd
}

func main() {
	log.SetFlags(0)
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := defaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		c, err := loadConfig(path)
		if err != nil {
			return err
		}
		cfg = c
	}
	flags := cmd.Flags()
	if flags.Changed("radix") {
		cfg.Radix, _ = flags.GetInt("radix")
	}
	if flags.Changed("fmt") {
		cfg.Format, _ = flags.GetString("fmt")
	}
	if flags.Changed("prec") {
		cfg.Prec, _ = flags.GetUint("prec")
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	s := newSession(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	s.postfix, _ = flags.GetBool("postfix")
	given, _ := flags.GetStringArray("given")
	for _, g := range given {
		if err := s.given(g); err != nil {
			return err
		}
	}

	inname, _ := flags.GetString("in")
	if inname == "" && len(args) == 0 {
		return repl(s)
	}
	// The input file comes first, then the arguments.
	if inname != "" {
		f, err := infile(inname)
		if err != nil {
			return err
		}
		err = s.lines(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	for _, a := range args {
		s.eval(a)
	}
	return s.status()
}

func infile(inname string) (io.ReadCloser, error) {
	if inname == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(inname)
}

// session evaluates expressions against one evaluator and reports results.
type session struct {
	ev      *grover.Evaluator
	radix   int
	verb    string
	postfix bool
	out     io.Writer
	errs    io.Writer
	failed  int
}

func newSession(cfg *config, out, errs io.Writer) *session {
	return &session{
		ev:    grover.NewEvaluator(cfg.options()...),
		radix: cfg.Radix,
		verb:  cfg.Format + "\n",
		out:   out,
		errs:  errs,
	}
}

// given defines a variable from a "$name=expr" string. The expression is
// evaluated in the session, so it may refer to earlier definitions.
func (s *session) given(d string) error {
	k := strings.IndexByte(d, '=')
	if k < 0 {
		return fmt.Errorf(`variable definitions must be "$name=expr", not %q`, d)
	}
	nm, vl := strings.TrimSpace(d[:k]), strings.TrimSpace(d[k+1:])
	r, err := s.ev.EvalString(vl, s.radix)
	if err != nil {
		return fmt.Errorf("setting %s: %w", nm, err)
	}
	if err := s.ev.Set(nm, r); err != nil {
		return fmt.Errorf("setting %s: %w", nm, err)
	}
	return nil
}

// eval evaluates one expression and prints its result or error. The result
// is false if the expression failed.
func (s *session) eval(src string) bool {
	ts, err := grover.Parse(src, s.radix)
	if err != nil {
		return s.fail(src, err)
	}
	if s.postfix {
		fmt.Fprintf(s.out, "%v : ", ts)
	}
	r, err := s.ev.Evaluate(ts)
	if err != nil {
		return s.fail(src, err)
	}
	fmt.Fprintf(s.out, s.verb, r)
	return true
}

func (s *session) fail(src string, err error) bool {
	s.failed++
	fmt.Fprintf(s.errs, "%s: %v: %v\n", grover.CodeOf(err), strconv.Quote(src), err)
	return false
}

// lines evaluates each non-blank line of r. The error is only for reading r;
// failed expressions are counted for status.
func (s *session) lines(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		s.eval(line)
	}
	return sc.Err()
}

// status returns an error if any expression failed.
func (s *session) status() error {
	switch s.failed {
	case 0:
		return nil
	case 1:
		return errors.New("1 expression failed")
	default:
		return fmt.Errorf("%d expressions failed", s.failed)
	}
}
