package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/zephyrtronium/grover"
)

const replHelp = `Enter an expression to evaluate it. Variables persist between lines.
Commands:
  :vars            list variables
  :postfix <expr>  show the postfix form of expr without evaluating it
  :help            show this message
  :quit            exit (also Ctrl-D)`

// repl runs an interactive session on the terminal.
func repl(s *session) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	hist := historyPath()
	if hist != "" {
		loadHistory(ln, hist)
		defer func() {
			f, err := os.Create(hist)
			if err != nil {
				log.Printf("saving history: %v", err)
				return
			}
			defer f.Close()
			if _, err := ln.WriteHistory(f); err != nil {
				log.Printf("saving history: %v", err)
			}
		}()
	}

	fmt.Fprintf(s.out, "grover %s (radix %d). :help for help.\n", version, s.radix)
	for {
		line, err := ln.Prompt("> ")
		switch {
		case err == nil:
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out)
			return nil
		default:
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)
		if s.line(line) {
			return nil
		}
	}
}

// loadHistory reads the history file at path into h. A missing file is an
// empty history.
func loadHistory(h interface{ ReadHistory(io.Reader) (int, error) }, path string) {
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("reading history: %v", err)
		}
		return
	}
	defer f.Close()
	if _, err := h.ReadHistory(f); err != nil {
		log.Printf("reading history: %v", err)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".grover_history")
}

// line handles one line of interactive input. The result is true if the
// session should end.
func (s *session) line(line string) bool {
	if !strings.HasPrefix(line, ":") {
		s.eval(line)
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Fprintln(s.out, replHelp)
	case ":vars":
		s.vars()
	case ":postfix":
		ts, err := grover.Parse(arg, s.radix)
		if err != nil {
			s.fail(arg, err)
			break
		}
		fmt.Fprintln(s.out, ts)
	default:
		fmt.Fprintf(s.errs, "unknown command %s; :help for help\n", cmd)
	}
	return false
}

func (s *session) vars() {
	names := s.ev.Vars()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "no variables")
		return
	}
	for _, name := range names {
		v, _ := s.ev.Lookup(name)
		fmt.Fprintf(s.out, "%s = "+strings.TrimSuffix(s.verb, "\n"), name, v)
		if s.ev.IsConst(name) {
			fmt.Fprint(s.out, " (const)")
		}
		fmt.Fprintln(s.out)
	}
}
