// Command reglet-ffi loads the demo package into an in-process host and
// calls its routines.
//
// Usage:
//
//	reglet-ffi manifest [-config file] [-set key=value]...
//	reglet-ffi schema
//	reglet-ffi call [-config file] [-set key=value]... [-wasm] <routine> [args...]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/reglet-ffi/application/schema"
	"github.com/reglet-dev/reglet-ffi/domain/entities"
	"github.com/reglet-dev/reglet-ffi/examples/demo"
	"github.com/reglet-dev/reglet-ffi/host"
	"github.com/reglet-dev/reglet-ffi/infrastructure/memhost"
	"github.com/reglet-dev/reglet-ffi/infrastructure/parser"
)

const appName = "reglet-ffi"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s <manifest|schema|call> [options] [args...]\n", appName)
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "manifest":
		return cmdManifest(args[1:], stdout, stderr)
	case "schema":
		return cmdSchema(stdout, stderr)
	case "call":
		return cmdCall(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "%s: unknown command %q\n", appName, args[0])
		usage(stderr)
		return 2
	}
}

// setFlag collects repeated -set key=value overrides.
type setFlag map[string]any

func (s setFlag) String() string {
	parts := make([]string, 0, len(s))
	for k, v := range s {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

// Set parses the value as a YAML scalar so numbers and booleans keep their
// type.
func (s setFlag) Set(kv string) error {
	key, raw, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", kv)
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	s[key] = v
	return nil
}

type runtimeFlags struct {
	config *string
	sets   setFlag
}

func addRuntimeFlags(fs *flag.FlagSet) *runtimeFlags {
	rf := &runtimeFlags{
		config: fs.String("config", "", "runtime config file (YAML)"),
		sets:   setFlag{},
	}
	fs.Var(rf.sets, "set", "override a runtime config field, key=value (repeatable)")
	return rf
}

func (rf *runtimeFlags) load() (*entities.RuntimeConfig, error) {
	var data []byte
	if *rf.config != "" {
		var err error
		data, err = os.ReadFile(*rf.config)
		if err != nil {
			return nil, err
		}
	}
	return host.NewLoader(host.WithOverrides(rf.sets)).Load(data)
}

func openDemo(ctx context.Context, rf *runtimeFlags, wasm bool, stdout, stderr io.Writer) (*host.Executor, *host.Package, error) {
	cfg, err := rf.load()
	if err != nil {
		return nil, nil, err
	}
	rt := memhost.New(memhost.WithConfig(*cfg), memhost.WithOutput(stdout), memhost.WithErrorOutput(stderr))

	exec, err := host.NewExecutor(ctx, host.WithRuntime(rt), host.WithWasmBridge(wasm))
	if err != nil {
		return nil, nil, err
	}
	table, err := demo.NewTable()
	if err != nil {
		_ = exec.Close(ctx)
		return nil, nil, err
	}
	pkg, err := exec.LoadPackage(ctx, table)
	if err != nil {
		_ = exec.Close(ctx)
		return nil, nil, err
	}
	return exec, pkg, nil
}

func cmdManifest(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("manifest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rf := addRuntimeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx := context.Background()
	exec, pkg, err := openDemo(ctx, rf, false, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer exec.Close(ctx)

	out, err := parser.EncodeManifest(pkg.Manifest())
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	_, _ = stdout.Write(out)
	return 0
}

func cmdSchema(stdout, stderr io.Writer) int {
	out, err := schema.RuntimeConfigSchema()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

func cmdCall(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("call", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rf := addRuntimeFlags(fs)
	wasm := fs.Bool("wasm", false, "call through the wazero guest module")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintf(stderr, "usage: %s call [options] <routine> [args...]\n", appName)
		return 2
	}

	ctx := context.Background()
	exec, pkg, err := openDemo(ctx, rf, *wasm, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer exec.Close(ctx)
	rt := exec.Runtime()

	callArgs, err := parseArgs(rt, fs.Args()[1:])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	defer func() {
		for _, h := range callArgs {
			rt.Unpin(h)
		}
	}()

	call := pkg.Call
	if *wasm {
		call = pkg.CallWasm
	}
	res, err := call(ctx, fs.Arg(0), callArgs...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var text string
	if err := rt.TopLevelExec(func() { text = format(rt, res) }); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, text)
	return 0
}
