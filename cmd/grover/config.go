package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/grover"
)

// config is a session file. For example:
//
//	radix: 10
//	format: "%.4f"
//	prec: 128
//	vars:
//	  $rate: 0.05
//	consts:
//	  $pi: 3.141592653589793
type config struct {
	Radix  int                `yaml:"radix"`
	Format string             `yaml:"format"`
	Prec   uint               `yaml:"prec"`
	Vars   map[string]float64 `yaml:"vars"`
	Consts map[string]float64 `yaml:"consts"`
}

func defaultConfig() *config {
	return &config{Radix: 10, Format: "%g", Prec: 64}
}

func loadConfig(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := parseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parseConfig decodes a session file. Fields missing from the file keep their
// defaults.
func parseConfig(r io.Reader) (*config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Radix < 2 || c.Radix > 36 {
		return fmt.Errorf("radix %d must be between 2 and 36", c.Radix)
	}
	if c.Format == "" {
		return errors.New("empty format")
	}
	for _, name := range sortedKeys(c.Vars) {
		if !grover.ValidName(name) {
			return fmt.Errorf("invalid variable name %q", name)
		}
	}
	for _, name := range sortedKeys(c.Consts) {
		if !grover.ValidName(name) {
			return fmt.Errorf("invalid constant name %q", name)
		}
		if _, ok := c.Vars[name]; ok {
			return fmt.Errorf("%s is both a variable and a constant", name)
		}
	}
	return nil
}

// options converts the config to evaluator options.
func (c *config) options() []grover.EvalOption {
	opts := []grover.EvalOption{grover.Prec(c.Prec)}
	if len(c.Vars) != 0 {
		opts = append(opts, grover.SetVars(c.Vars))
	}
	for _, name := range sortedKeys(c.Consts) {
		opts = append(opts, grover.SetConst(name, c.Consts[name]))
	}
	return opts
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion sort, like the evaluator's listing of variables. Session
	// files hold few names.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
