package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// predictors gives the values some flags accept, by flag name.
var predictors = map[string]complete.Predictor{
	"store":  predict.Set{"dir", "sqlite", "postgres", "redis", "memory"},
	"config": predict.Files("*.yaml"),
	"format": predict.Set{"json", "xlsx"},
	"type":   predict.Set{"SALE", "PAYMENT"},
	"o":      predict.Files("*"),
}

// args predicts the positional arguments of the commands reading a file.
var args = map[string]complete.Predictor{
	"scan":   predict.Files("*"),
	"import": predict.Files("*.json"),
}

// flagsOf predicts the flags defined in f.
func flagsOf(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := predictors[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}

// Completion describes the command line for shell completion: global flags,
// subcommands and their flags.
func Completion(global *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagsOf(global),
	}
	for _, e := range Commands() {
		f := flag.NewFlagSet(e.Name(), flag.ContinueOnError)
		e.SetFlags(f)
		root.Sub[e.Name()] = &complete.Command{Flags: flagsOf(f), Args: args[e.Name()]}
	}
	for _, name := range []string{"help", "flags", "commands"} {
		root.Sub[name] = &complete.Command{}
	}
	return root
}
