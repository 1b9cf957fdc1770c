package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/bob-lang/bob/internal/ast"
	"github.com/bob-lang/bob/internal/config"
	"github.com/bob-lang/bob/internal/evaluator"
	"github.com/bob-lang/bob/internal/lexer"
	"github.com/bob-lang/bob/internal/parser"
)

const replBanner = "Bob interactive shell\nType 'exit' to quit, 'reset' to clear state\n"

// Run is the driver entry point. With a file argument it runs the script;
// otherwise it starts a REPL when stdin is a terminal, or executes piped
// input as a whole program.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	settings, err := config.Load(config.SettingsFile)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}

	eval := evaluator.NewWithSettings(settings)
	eval.Out = out
	eval.In = bufio.NewReader(in)

	if len(args) > 0 {
		return runFile(args[0], eval, errOut)
	}

	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return runRepl(settings, eval, in, out, errOut)
	}

	source, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return runSource(string(source), eval, errOut)
}

// runFile executes a script. A name without an extension is resolved through
// the recognized source extensions.
func runFile(path string, eval *evaluator.Evaluator, errOut io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil && filepath.Ext(path) == "" {
		for _, ext := range config.SourceFileExtensions {
			if data, extErr := os.ReadFile(path + ext); extErr == nil {
				source, err = data, nil
				break
			}
		}
	}
	if err != nil {
		fmt.Fprintf(errOut, "Error: could not open file %s\n", path)
		return 1
	}
	return runSource(string(source), eval, errOut)
}

// runSource parses and executes one program. Parse errors are listed with
// their positions; a runtime error stops the run.
func runSource(source string, eval *evaluator.Evaluator, errOut io.Writer) int {
	program, ok := parse(source, errOut)
	if !ok {
		return 1
	}
	result := eval.Execute(program)
	if err, ok := result.(*evaluator.Error); ok {
		printRuntimeError(errOut, err)
		return 1
	}
	return 0
}

func parse(source string, errOut io.Writer) (*ast.Program, bool) {
	p := parser.New(lexer.New(source))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Fprintln(errOut, "ParseError:", msg)
		}
		return nil, false
	}
	return program, true
}

func printRuntimeError(errOut io.Writer, err *evaluator.Error) {
	if err.Line > 0 {
		fmt.Fprintf(errOut, "RuntimeError at %d:%d: %s\n", err.Line, err.Column, err.Message)
	} else {
		fmt.Fprintln(errOut, "RuntimeError:", err.Message)
	}
}

// runRepl executes successive input lines against persistent interpreter
// state; errors are reported and the loop continues.
func runRepl(settings *config.Settings, eval *evaluator.Evaluator, in io.Reader, out, errOut io.Writer) int {
	fmt.Fprint(out, replBanner)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, settings.Repl.Prompt)
		if !scanner.Scan() {
			return 0
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "quit":
			return 0
		case "reset":
			eval.Reset()
			continue
		}

		program, ok := parse(line, errOut)
		if !ok {
			continue
		}
		result := eval.Execute(program)
		if err, ok := result.(*evaluator.Error); ok {
			printRuntimeError(errOut, err)
		}
	}
}
