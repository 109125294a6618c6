// Command setup-check validates a serialized acquisition setup. It decodes
// the setup record through the component registry, reports how many entries
// decoded exactly, degraded to a placeholder or were skipped, and runs the
// default validation rules over the result.
//
// Exit codes: 0 when the setup is clean, 1 when validation fails (or, with
// -strict, when any entry degraded), 2 on usage errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ctcore/internal/core"
	"ctcore/pkg/record"
	"ctcore/pkg/rig"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("setup-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	strict := fs.Bool("strict", false, "treat degraded or skipped components as a failure")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: setup-check [-strict] <setup.json>")
		return 2
	}

	result, err := run(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "setup-check: %v\n", err)
		return 1
	}
	printResult(stdout, result)
	if result.failed(*strict) {
		return 1
	}
	return 0
}

type checkResult struct {
	system *rig.System
	decode rig.DecodeReport
	rules  core.Report
}

func (r checkResult) failed(strict bool) bool {
	if r.rules.HasErrors() {
		return true
	}
	return strict && r.decode.Degraded()
}

func run(path string) (checkResult, error) {
	if strings.TrimSpace(path) == "" {
		return checkResult{}, errors.New("setup file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return checkResult{}, fmt.Errorf("read setup file: %w", err)
	}
	rec, err := record.Unmarshal(data)
	if err != nil {
		return checkResult{}, fmt.Errorf("parse setup file: %w", err)
	}

	core.EnsureBuiltins()
	system, decode, err := rig.SystemFromRecord(rec)
	if err != nil {
		return checkResult{}, fmt.Errorf("decode setup: %w", err)
	}
	rules := core.NewDefaultRulesEngine().Evaluate(system)
	return checkResult{system: system, decode: decode, rules: rules}, nil
}

func printResult(w io.Writer, result checkResult) {
	fmt.Fprintf(w, "setup %q: %s\n", result.system.Name(), describe(result.system))
	fmt.Fprintf(w, "decode: %d exact, %d fallback, %d skipped\n",
		result.decode.Exact, result.decode.Fallback, result.decode.Skipped)
	for _, c := range result.system.Components() {
		fmt.Fprintf(w, "  %-14s %s\n", c.Elemental().String(), c.Name())
	}
	for _, issue := range result.rules.Issues {
		fmt.Fprintf(w, "%s [%s]: %s\n", issue.Severity, issue.Rule, issue.Message)
	}
}

func describe(system *rig.System) string {
	switch {
	case system.IsEmpty():
		return "empty"
	case system.IsSimple():
		return "simple"
	case system.IsValid():
		return "valid"
	default:
		return "incomplete"
	}
}
