// Command aluminac is the compiler driver (spec.md §6): it resolves a
// sysroot and a set of named source arguments, threads them through
// the compilation pipeline, and renders diagnostics. Its flag surface
// and colorized-output style are grounded on the teacher's
// cmd/ailang/main.go; unlike that REPL-first driver, aluminac has a
// single job, compile and exit, matching an ahead-of-time compiler's
// usual command shape.
//
// Turning source text into the item-maker's Scope/NamedItem tree is
// the job of a parser and name-resolution pass that live outside this
// module (spec.md's Non-goals name both explicitly); main here wires
// everything around that seam — flag parsing, sysroot/positional file
// discovery, diagnostic rendering, exit codes — and compiles whatever
// Scope the (externally supplied) front end produces. Without one
// linked in, the discovered files are registered for diagnostics and
// timings but the driver compiles an empty root scope, which is the
// honest behavior for a core that does not parse.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/alumina-lang/aluminac/internal/cfgdsl"
	"github.com/alumina-lang/aluminac/internal/diag"
	"github.com/alumina-lang/aluminac/internal/itemmaker"
	"github.com/alumina-lang/aluminac/internal/pipeline"
	"github.com/alumina-lang/aluminac/internal/projcfg"
	"github.com/alumina-lang/aluminac/internal/sysroot"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// repeatedFlag collects every occurrence of a flag.Var flag in order,
// for --cfg and -Z which spec.md §6 marks repeatable.
type repeatedFlag []string

func (r *repeatedFlag) String() string { return strings.Join(*r, ",") }
func (r *repeatedFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("aluminac", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		output     = fs.String("o", "", "output path for generated C (default: stdout)")
		sysrootOpt = fs.String("sysroot", "", "standard library sysroot directory (env ALUMINA_SYSROOT)")
		debug      = fs.Bool("debug", false, "emit unindented C and set the debug cfg flag")
		debugShort = fs.Bool("d", false, "shorthand for --debug")
		timings    = fs.Bool("timings", false, "print per-phase timings to stderr")
		library    = fs.Bool("library", false, "compile as a library; no main function is required")
		cfgFlags   repeatedFlag
		zFlags     repeatedFlag
	)
	fs.Var(&cfgFlags, "cfg", "set a cfg flag, name or name=value (repeatable)")
	fs.Var(&zFlags, "Z", "unstable compiler option (repeatable)")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	manifest, err := projcfg.Load("alumina.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return 1
	}

	root := sysroot.ResolveRoot(*sysrootOpt)
	if root == "" && manifest != nil {
		root = manifest.Sysroot
	}
	isLibrary := *library || (manifest != nil && manifest.Library)
	isDebug := *debug || *debugShort

	files := diag.NewFiles()
	ctx := diag.NewContext(files)
	flags := cfgdsl.NewFlags()
	if isDebug {
		flags.SetBool("debug")
	}
	if isLibrary {
		flags.SetBool("library")
	}
	for _, raw := range append(cfgFlags, manifestCfg(manifest)...) {
		applyCfgFlag(flags, raw)
	}
	for _, z := range zFlags {
		flags.SetValue("unstable", z)
	}

	t0 := time.Now()
	var discovered []sysroot.SourceFile
	if root != "" {
		discovered, err = sysroot.Discover(root)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: sysroot discovery: %v\n", red("error"), err)
			return 1
		}
	}
	for _, arg := range fs.Args() {
		discovered = append(discovered, sysroot.ParsePositional(arg))
	}
	for _, src := range discovered {
		files.Register(src.Path)
	}
	discoverElapsed := time.Since(t0)

	t1 := time.Now()
	result, err := pipeline.Compile(&itemmaker.Scope{Groups: map[string]*itemmaker.NamedItem{}}, flags, ctx, files, pipeline.Options{
		Library: isLibrary,
		Debug:   isDebug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return 1
	}
	compileElapsed := time.Since(t1)

	if *timings {
		fmt.Fprintf(os.Stderr, "%s discover: %s\n", cyan("timing"), discoverElapsed)
		fmt.Fprintf(os.Stderr, "%s compile:  %s (%d items, %d live, %d dead)\n",
			cyan("timing"), compileElapsed, result.MonomorphCount, result.LiveCount, result.DeadCount)
	}

	if rendered := ctx.Render(); rendered != "" {
		fmt.Fprintln(os.Stderr, rendered)
	}
	if ctx.HasErrors() {
		fmt.Fprintf(os.Stderr, "%s %s\n", bold(red("error:")), "compilation failed")
		return 1
	}
	if len(ctx.Warnings()) > 0 {
		fmt.Fprintf(os.Stderr, "%s %d warning(s) emitted\n", yellow("warning:"), len(ctx.Warnings()))
	}

	if *output == "" || *output == "-" {
		fmt.Println(result.C)
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return 1
	}
	if err := os.WriteFile(*output, []byte(result.C), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		return 1
	}
	return 0
}

func manifestCfg(m *projcfg.Manifest) []string {
	if m == nil {
		return nil
	}
	return m.CfgFlags()
}

// applyCfgFlag parses one --cfg argument ("name" or "name=value") per
// spec.md §6 into flags.
func applyCfgFlag(flags *cfgdsl.Flags, raw string) {
	if name, value, ok := strings.Cut(raw, "="); ok {
		flags.SetValue(name, value)
		return
	}
	flags.SetBool(raw)
}
