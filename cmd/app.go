// Package cmd implements the adv CLI application.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/advisor"
	"github.com/etnz/advisor/config"
	"github.com/etnz/advisor/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// Commands lists every adv subcommand.
var Commands = []subcommands.Command{
	&scoreCmd{},
	&optimizeCmd{},
	&overlapCmd{},
	&distributeCmd{},
	&projectCmd{},
	&recommendCmd{},
	&watchCmd{},
	&importCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.Filename, "Path to the configuration file (YAML format)")
var jsonOutput = flag.Bool("json", false, "print results as JSON instead of markdown")

// defaultSnapshot is read when a command gets no snapshot argument.
const defaultSnapshot = "snapshot.jsonl"

// loadConfig reads the configuration file.
func loadConfig() (*config.Config, error) {
	return config.Load(*configFile)
}

// newLogger returns the application logger configured by cfg.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}).With().Str("component", "cli").Logger()
}

// snapshotFiles returns the snapshot file arguments, or the default snapshot.
func snapshotFiles(f *flag.FlagSet) []string {
	if f.NArg() == 0 {
		return []string{defaultSnapshot}
	}
	return f.Args()
}

// requestName names a request after its snapshot file.
func requestName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// printResult prints v as indented JSON when -json is set, or md otherwise.
func printResult(v any, md func() string) subcommands.ExitStatus {
	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(md())
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printWarnings prints warnings on stderr.
func printWarnings(warnings []advisor.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
}
