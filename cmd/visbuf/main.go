// visbuf is a small command line front end for the text package: it can
// edit a file interactively through a readline REPL, or replay a batch
// of edit commands non-interactively for scripting and testing.
//
// Usage:
//
//	visbuf [flags] <file>            Open file (or create it) in the REPL
//	visbuf [flags] --script <path> <file>  Replay commands from a script file
//
// Flags:
//
//	-c, --config <file>    JWCC config file (see [text.LoadConfig])
//	-m, --method <method>  Save method: auto, atomic, inplace (default auto)
//	-s, --script <file>    Read commands from file instead of stdin/REPL
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/Duncaen/vis-go/text"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	flags := flag.NewFlagSet("visbuf", flag.ContinueOnError)
	flags.Usage = func() {}

	flagConfig := flags.StringP("config", "c", "", "JWCC config file")
	flagMethod := flags.StringP("method", "m", "auto", "save method: auto, atomic, inplace")
	flagScript := flags.StringP("script", "s", "", "replay commands from this file instead of a REPL")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(errOut, "usage: visbuf [flags] <file>")

		return 1
	}

	method, err := parseSaveMethod(*flagMethod)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}

	path := rest[0]

	cfg := text.DefaultConfig()

	if *flagConfig != "" {
		cfg, err = text.LoadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}
	}

	tx, err := text.LoadWithConfig(path, cfg)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)

		return 1
	}
	defer tx.Free()

	sess := &session{tx: tx, path: path, method: method, marks: map[string]text.Mark{}, out: out, errOut: errOut}

	if *flagScript != "" {
		f, err := os.Open(*flagScript) //nolint:gosec // script path supplied by caller
		if err != nil {
			fmt.Fprintln(errOut, "error:", err)

			return 1
		}
		defer f.Close()

		return runScript(sess, f)
	}

	return runREPL(sess)
}

func parseSaveMethod(s string) (text.SaveMethod, error) {
	switch s {
	case "auto", "":
		return text.SaveAuto, nil
	case "atomic":
		return text.SaveAtomic, nil
	case "inplace":
		return text.SaveInplace, nil
	default:
		return 0, fmt.Errorf("unknown save method %q (want auto, atomic, inplace)", s)
	}
}

// session bundles the buffer and I/O used by both the REPL and the
// batch script runner, so command handling is shared between the two.
type session struct {
	tx     *text.Text
	path   string
	method text.SaveMethod
	marks  map[string]text.Mark
	out    io.Writer
	errOut io.Writer
	quit   bool
}
