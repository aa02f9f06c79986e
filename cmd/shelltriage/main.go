// Command shelltriage runs a shell binary under test and classifies
// the outcome for fuzzing triage.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deixis/shelltriage"
	"github.com/deixis/shelltriage/internal/config"
	"github.com/deixis/shelltriage/internal/detect"
	triagemcp "github.com/deixis/shelltriage/internal/mcp"
	"github.com/deixis/shelltriage/internal/report"
	"github.com/deixis/shelltriage/internal/runner"
	"github.com/deixis/shelltriage/internal/shell"
	"github.com/deixis/shelltriage/internal/triage"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("shelltriage: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = runMain(args)
	case "interesting":
		interestingMain(args) // exits directly: the exit code is the answer
	case "verify":
		err = verifyMain(args)
	case "show":
		err = showMain(args)
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(shelltriage.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "shelltriage: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: shelltriage <command> [flags] [args]

Commands:
  run          Run the shell once and classify the outcome
  interesting  Run the shell once; exit 0 if the level meets the threshold
  verify       Verify a shell binary's build configuration
  show         Show a stored triage record by run id
  mcp          Start the MCP server
  version      Print the version
  help         Show this help

Use "shelltriage <command> -h" for command-specific flags.`)
}

// --- run ---

func runMain(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	timeoutFlag := fs.Duration("timeout", 0, "override configured per-run timeout (e.g. 30s)")
	knownFlag := fs.String("known", "", "known-signatures directory for the detectors")
	prefixFlag := fs.String("prefix", "", "log file prefix (default: unique prefix in the log dir)")
	jsonFlag := fs.Bool("json", false, "output the record as JSON")
	_ = fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		return fmt.Errorf("run: no command given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := newEnv(*timeoutFlag, *knownFlag)
	if err != nil {
		return err
	}

	v, res, err := env.harness.Triage(ctx, argv, env.logPrefix(*prefixFlag))
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	rec := report.NewRecord(argv, res, v)
	if err := env.store.Save(rec); err != nil {
		log.Printf("saving record: %v", err)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Println(v.Summary)
	fmt.Printf("level=%s run=%s\n", v.Level, rec.ID)
	return nil
}

// --- interesting ---

// interestingMain exits 0 when the run classifies at or above the
// threshold, 1 when it does not, and 2 on any failure. Reduction tools
// consume the exit code.
func interestingMain(args []string) {
	fs := flag.NewFlagSet("interesting", flag.ExitOnError)
	minFlag := fs.String("min", "", "minimum interesting level (name or rank, default from config)")
	timeoutFlag := fs.Duration("timeout", 0, "override configured per-run timeout (e.g. 30s)")
	knownFlag := fs.String("known", "", "known-signatures directory for the detectors")
	prefixFlag := fs.String("prefix", "", "log file prefix (default: unique prefix in the log dir)")
	_ = fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		log.Println("interesting: no command given")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := newEnv(*timeoutFlag, *knownFlag)
	if err != nil {
		log.Println(err)
		os.Exit(2)
	}

	min, err := env.cfg.MinLevel()
	if err != nil {
		log.Println(err)
		os.Exit(2)
	}
	if *minFlag != "" {
		min, err = triage.ParseLevel(*minFlag)
		if err != nil {
			log.Println(err)
			os.Exit(2)
		}
	}

	ok, v, err := env.harness.Interesting(ctx, min, argv, env.logPrefix(*prefixFlag))
	if err != nil {
		log.Println(err)
		os.Exit(2)
	}

	fmt.Fprintln(os.Stderr, v.Summary)
	if !ok {
		os.Exit(1)
	}
}

// --- verify ---

func verifyMain(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	archFlag := fs.String("arch", "", "expected bitness: 32 or 64 (empty skips the check)")
	debugFlag := fs.Bool("debug", false, "expect a debug build")
	asanFlag := fs.Bool("asan", false, "expect an AddressSanitizer build")
	moreDetFlag := fs.Bool("more-deterministic", false, "expect a more-deterministic build")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("verify: expected exactly one shell path")
	}
	binary := fs.Arg(0)

	opts := shell.BuildOptions{
		Arch:              *archFlag,
		Debug:             *debugFlag,
		ASan:              *asanFlag,
		MoreDeterministic: *moreDetFlag,
	}
	if err := shell.Verify(binary, opts); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	fmt.Printf("%s matches the expected build configuration\n", binary)
	return nil
}

// --- show ---

func showMain(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "output the record as JSON")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("show: expected exactly one run id")
	}

	env, err := newEnv(0, "")
	if err != nil {
		return err
	}

	rec, err := env.store.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Println(rec.Summary)
	fmt.Printf("level=%s status=%s log=%s\n", rec.Level, rec.Status, rec.LogPath)
	return nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	knownFlag := fs.String("known", "", "known-signatures directory for the detectors")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(triagemcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	env, err := newEnv(0, *knownFlag)
	if err != nil {
		return err
	}

	server := triagemcp.NewServer(env.cfg, env.harness.Classifier, env.store, env.cfg.LogDirOrTemp())

	if *httpAddr != "" {
		return serveHTTP(ctx, server, *httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

// env bundles the config, harness, and record store built once per
// invocation.
type env struct {
	cfg     *config.Config
	harness *triage.Harness
	store   report.Store
}

func newEnv(timeoutOverride time.Duration, knownOverride string) (*env, error) {
	workspace, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining workspace: %w", err)
	}

	loaded, err := config.Load(workspace)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	timeout := cfg.Timeout()
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	knownPath := cfg.KnownPath
	if knownOverride != "" {
		knownPath = knownOverride
	}
	base := detect.Empty()
	if knownPath != "" {
		base, err = detect.Load(knownPath)
		if err != nil {
			return nil, fmt.Errorf("loading baseline: %w", err)
		}
	}

	harness := &triage.Harness{
		Runner: &runner.Runner{Timeout: timeout, MaxOutput: cfg.MaxOutputBytes()},
		Classifier: &triage.Classifier{
			Assertions: detect.NewAssertions(base),
			Crashes:    detect.NewCrashes(base),
			Malloc:     detect.NewMalloc(),
		},
	}

	recordDir := filepath.Join(cfg.LogDirOrTemp(), "shelltriage-records")
	store := report.NewLRUStore(5, report.NewDiskStoreAt(recordDir))

	return &env{cfg: cfg, harness: harness, store: store}, nil
}

func (e *env) logPrefix(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(e.cfg.LogDirOrTemp(), "triage-"+uuid.New().String())
}
