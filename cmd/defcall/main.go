package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/defcall/defcall/internal/artifact"
	"github.com/defcall/defcall/internal/callsite"
	"github.com/defcall/defcall/internal/config"
	"github.com/defcall/defcall/internal/descriptor"
	"github.com/defcall/defcall/internal/diagnostics"
	"github.com/defcall/defcall/internal/emit"
	"github.com/defcall/defcall/internal/manifest"
	"github.com/defcall/defcall/internal/permute"
	"github.com/defcall/defcall/internal/scan"
	"github.com/defcall/defcall/pkg/defcall"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	Prefix:          config.ToolName,
})

// useColor gates ANSI color in diagnostic output.
var useColor = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func printDiagnostic(err *diagnostics.DiagnosticError) {
	if useColor {
		fmt.Fprintf(os.Stderr, "- \x1b[31m[%s]\x1b[0m %s\n", err.Code, strings.TrimPrefix(err.Error(), "["+string(err.Code)+"] "))
		return
	}
	fmt.Fprintf(os.Stderr, "- %s\n", err.Error())
}

func usage() {
	fmt.Printf(`Usage: %[1]s <command> [arguments]

Commands:
  generate [dir]           compile dispatch tables for declared items
      --scan [patterns]    also scan Go sources for //%[1]s:generate directives
      -v, --verbose        log per-declaration progress
  expand <file> [dir]      expand the call sites listed in file (one per line)
      -e <call>            expand one call expression instead of a file
      -o <path>            write output to path instead of stdout
  explain <name> [dir]     show the compiled call forms of one item
      --ordered [limit]    also list ordered spellings (default limit 50)
  clean [dir]              remove the %[2]s artifact directory
  version                  print the tool version
  help                     print this help

A %[3]s manifest is picked up automatically, walking up from dir.
`, config.ToolName, config.ArtifactDirName, config.ManifestFileNames[0])
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "help" && os.Args[1] != "-help" && os.Args[1] != "--help" {
		return false
	}
	usage()
	return true
}

func handleVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "version" && os.Args[1] != "-version" && os.Args[1] != "--version" {
		return false
	}
	fmt.Printf("%s %s\n", config.ToolName, config.Version)
	return true
}

// collectDeclarations gathers descriptors from the manifest (when one
// exists) and, with doScan set, from annotated Go sources under dir.
func collectDeclarations(dir string, doScan bool, patterns []string) ([]*descriptor.Declaration, error) {
	var decls []*descriptor.Declaration

	manifestPath, err := manifest.Find(dir)
	if err != nil {
		return nil, err
	}
	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		found := m.Descriptors()
		logger.Debug("loaded manifest", "path", manifestPath, "declarations", len(found))
		decls = append(decls, found...)
	}

	if doScan {
		found, err := scan.New(dir).Scan(patterns...)
		if err != nil {
			return nil, err
		}
		logger.Debug("scanned sources", "dir", dir, "declarations", len(found))
		decls = append(decls, found...)
	}

	if len(decls) == 0 {
		return nil, fmt.Errorf("no declarations found: no manifest above %s and nothing scanned (try --scan)", dir)
	}
	return decls, nil
}

func handleGenerate() bool {
	if len(os.Args) < 2 || os.Args[1] != "generate" {
		return false
	}

	dir := "."
	doScan := false
	var patterns []string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-v" || arg == "--verbose":
			logger.SetLevel(log.DebugLevel)
		case arg == "--scan":
			doScan = true
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				patterns = append(patterns, args[i])
			}
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", arg)
			os.Exit(1)
		default:
			dir = arg
		}
	}

	decls, err := collectDeclarations(dir, doScan, patterns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	store, err := artifact.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var failed []*diagnostics.DiagnosticError
	generated, skipped := 0, 0

	for _, d := range decls {
		fp := artifact.Fingerprint(d)
		if rec, err := store.Lookup(d.Name, d.Scope); err == nil && rec.Fingerprint == fp {
			logger.Debug("up to date", "item", d.Name, "scope", d.Scope)
			skipped++
			continue
		}

		compiled, derrs := defcall.Process(d)
		if len(derrs) > 0 {
			failed = append(failed, derrs...)
			continue
		}

		if compiled.Signature.Len() > config.SoftParamLimit {
			logger.Warn("large parameter list; call forms grow factorially",
				"item", d.Name, "params", compiled.Signature.Len())
		}

		if _, err := store.Put(d, compiled.Signature, compiled.Table); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		logger.Debug("generated",
			"item", d.Name,
			"scope", d.Scope,
			"entries", compiled.Table.Size(),
			"spellings", compiled.Table.OrderedFormCount())
		generated++
	}

	if len(failed) > 0 {
		fmt.Fprintln(os.Stderr, "Generation failed with errors:")
		for _, derr := range failed {
			printDiagnostic(derr)
		}
		os.Exit(1)
	}

	fmt.Printf("Generated %d item(s), %d up to date\n", generated, skipped)
	return true
}

func handleExpand() bool {
	if len(os.Args) < 2 || os.Args[1] != "expand" {
		return false
	}

	dir := "."
	file := ""
	expr := ""
	output := ""
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-v" || arg == "--verbose":
			logger.SetLevel(log.DebugLevel)
		case arg == "-e" || arg == "--expr":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s needs a call expression\n", arg)
				os.Exit(1)
			}
			i++
			expr = args[i]
		case arg == "-o" || arg == "--output":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s needs a path\n", arg)
				os.Exit(1)
			}
			i++
			output = args[i]
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", arg)
			os.Exit(1)
		case file == "":
			file = arg
		default:
			dir = arg
		}
	}
	if file == "" && expr == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s expand <file> [dir]  or  %s expand -e <call> [dir]\n", os.Args[0], os.Args[0])
		os.Exit(1)
	}
	if expr != "" {
		// With -e the positional argument is the project dir, not a file.
		if file != "" {
			dir = file
		}
		file = "<expr>"
	}

	var data []byte
	if expr != "" {
		data = []byte(expr)
	} else {
		var err error
		data, err = os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading call file: %s\n", err)
			os.Exit(1)
		}
	}

	store, err := artifact.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer store.Close()

	expander := callsite.NewExpander(store)

	var expansions []emit.Expansion
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		pos := diagnostics.Position{File: file, Line: i + 1}
		res, derr := expander.Expand(line, pos)
		if derr != nil {
			fmt.Fprintln(os.Stderr, "Expansion failed with errors:")
			printDiagnostic(derr)
			os.Exit(1)
		}
		logger.Debug("expanded", "source", line, "code", res.Code)
		expansions = append(expansions, emit.Expansion{
			Source:     line,
			Code:       res.Code,
			ImportPath: res.ImportPath,
		})
	}

	rendered, err := emit.Render(expansions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if output == "" {
		fmt.Print(rendered)
		return true
	}
	if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Expanded %d call(s) -> %s\n", len(expansions), output)
	return true
}

func handleExplain() bool {
	if len(os.Args) < 2 || os.Args[1] != "explain" {
		return false
	}

	dir := "."
	name := ""
	ordered := false
	orderedLimit := 50
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--ordered":
			ordered = true
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil {
					orderedLimit = n
					i++
				}
			}
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", arg)
			os.Exit(1)
		case name == "":
			name = arg
		default:
			dir = arg
		}
	}
	if name == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s explain <name> [dir]\n", os.Args[0])
		os.Exit(1)
	}

	store, err := artifact.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer store.Close()

	rec, err := store.LookupByName(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	sig := rec.Signature
	table := rec.Table()

	scope := sig.Scope
	if scope == "" {
		scope = "(private, unqualified)"
	}
	fmt.Printf("%s %s\n", sig.Kind, sig.Name)
	fmt.Printf("  scope:      %s\n", scope)
	fmt.Printf("  visibility: %s\n", sig.Visibility)
	fmt.Printf("  params:     %d (%d required, %d defaulted)\n",
		sig.Len(), sig.Required(), sig.Defaulted())
	fmt.Printf("  entries:    %d (%d ordered spellings)\n\n",
		table.Size(), table.OrderedFormCount())

	for _, e := range table.Entries {
		form := permute.CallForm{Prefix: e.Prefix, Named: e.Named, Omitted: e.Omitted}
		fmt.Printf("  %-40s x%d\n", form.Pattern(sig), e.Spellings)
	}

	if ordered {
		fmt.Printf("\nOrdered spellings (first %d):\n", orderedLimit)
		count := 0
		permute.NewEnumerator(sig).Ordered(func(f permute.CallForm) bool {
			fmt.Printf("  %s\n", f.Pattern(sig))
			count++
			return count < orderedLimit
		})
	}
	return true
}

func handleClean() bool {
	if len(os.Args) < 2 || os.Args[1] != "clean" {
		return false
	}
	dir := "."
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}
	if err := artifact.Clean(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %s\n", filepath.Join(dir, config.ArtifactDirName))
	return true
}

func main() {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			// Print stack trace for debugging
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if handleHelp() {
		return
	}
	if handleVersion() {
		return
	}
	if handleGenerate() {
		return
	}
	if handleExpand() {
		return
	}
	if handleExplain() {
		return
	}
	if handleClean() {
		return
	}

	usage()
	os.Exit(1)
}
