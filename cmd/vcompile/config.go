package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// fileConfig is the layout of the --config file. Missing keys keep the flag defaults.
type fileConfig struct {
	HTML         *bool   `yaml:"html,omitempty"`
	KeepComments *bool   `yaml:"keep_comments,omitempty"`
	SourceRange  *bool   `yaml:"source_range,omitempty"`
	Condense     *bool   `yaml:"condense,omitempty"`
	Check        *bool   `yaml:"check,omitempty"`
	Delimiters   *string `yaml:"delimiters,omitempty"`
}

// loadConfig reads the YAML file at path into o. Flags set on the command line take
// precedence over the file.
func (o *options) loadConfig(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}
	setBool("html", &o.html, cfg.HTML)
	setBool("keep-comments", &o.keepComments, cfg.KeepComments)
	setBool("source-range", &o.sourceRange, cfg.SourceRange)
	setBool("condense", &o.condense, cfg.Condense)
	setBool("check", &o.check, cfg.Check)
	if cfg.Delimiters != nil && !flags.Changed("delimiters") {
		o.delimiters = *cfg.Delimiters
	}

	return nil
}
