// Command adv recommends purchases for a stock and ETF portfolio.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/advisor/cmd"
	"github.com/etnz/advisor/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	cmd.Register(commander)

	completion().Complete("adv")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the subcommands and their flags for shell completion.
func completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: predictFlags(flag.CommandLine),
	}
	for _, c := range cmd.Commands {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		sub := &complete.Command{Flags: predictFlags(f), Args: predict.Files("*.jsonl")}
		if c.Name() == "topic" {
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		if c.Name() == "import" {
			sub.Args = predict.Files("*.json")
		}
		root.Sub[c.Name()] = sub
	}
	return root
}

func predictFlags(f *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	f.VisitAll(func(fl *flag.Flag) {
		switch fl.Name {
		case "config":
			flags[fl.Name] = predict.Files("*.yaml")
		case "profiles", "o":
			flags[fl.Name] = predict.Files("*.jsonl")
		case "look-ahead":
			flags[fl.Name] = predict.Set{"sharpe", "utility"}
		default:
			flags[fl.Name] = predict.Nothing
		}
	})
	return flags
}
