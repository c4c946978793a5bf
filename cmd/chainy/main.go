// Chainy is a small CLI for running prompt chains against hosted language
// models. It loads a YAML configuration (or falls back to the watsonx
// environment variables), builds the configured model adapters, and exposes
// four subcommands: a one-shot generation, a two-step question chain, a
// document-grounded QA chain backed by a Weaviate index, and an ingest
// command that chunks a text file into that index.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/joho/godotenv"

	"github.com/germanamz/chainy/pkg/chain"
	"github.com/germanamz/chainy/pkg/docs"
	"github.com/germanamz/chainy/pkg/engine"
	"github.com/germanamz/chainy/pkg/modeladapter"
	"github.com/germanamz/chainy/pkg/prompt"
	"github.com/germanamz/chainy/pkg/retrieval"
	"github.com/germanamz/chainy/pkg/retrieval/weaviate"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error

	switch cmd {
	case "generate":
		err = runGenerate(ctx, args)
	case "chain":
		err = runChain(ctx, args)
	case "qa":
		err = runQA(ctx, args)
	case "ingest":
		err = runIngest(ctx, args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: chainy <command> [flags]

Commands:
  generate  Send a single prompt to the default model
  chain     Turn a topic into a question, then answer it
  qa        Answer a question grounded on retrieved documents
  ingest    Chunk a text file into the retrieval index
`)
}

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet) (configPath, envFile, providerName *string) {
	configPath = fs.String("config", "", "path to configuration file (default: environment variables)")
	envFile = fs.String("env", ".env", "path to .env file (ignored if missing)")
	providerName = fs.String("provider", "", "provider to use (default: default_provider in config)")
	return configPath, envFile, providerName
}

// setup loads the .env file and builds an engine from the config file, or
// from environment variables when no config path is given.
func setup(configPath, envFile string) (*engine.Engine, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	var (
		cfg engine.Config
		err error
	)

	if configPath != "" {
		cfg, err = engine.LoadConfig(configPath)
	} else {
		cfg, err = engine.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	return engine.New(cfg)
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath, envFile, providerName := commonFlags(fs)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("generate: expected exactly one prompt argument")
	}

	eng, err := setup(*configPath, *envFile)
	if err != nil {
		return err
	}

	adapter, err := adapterFor(eng, *providerName)
	if err != nil {
		return err
	}

	out, err := adapter.Generate(ctx, fs.Arg(0), nil)
	if err != nil {
		return err
	}

	printMarkdown(out)
	return nil
}

func runChain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("chain", flag.ExitOnError)
	configPath, envFile, providerName := commonFlags(fs)
	verbose := fs.Bool("verbose", false, "log each intermediate output")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("chain: expected exactly one topic argument")
	}

	eng, err := setup(*configPath, *envFile)
	if err != nil {
		return err
	}

	adapter, err := adapterFor(eng, *providerName)
	if err != nil {
		return err
	}

	question := prompt.MustNew(
		"Write one concise question about the following topic.\n\nTopic: {topic}\n\nQuestion:",
		"topic",
	)
	answer := prompt.MustNew(
		"Answer the following question in a short paragraph.\n\nQuestion: {question}\n\nAnswer:",
		"question",
	)

	seq, err := chain.NewSequential(
		chain.NewStep(adapter, question),
		chain.NewStep(adapter, answer),
	)
	if err != nil {
		return err
	}
	seq.Verbose = *verbose

	out, trace, err := seq.RunTrace(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	for _, entry := range trace[:len(trace)-1] {
		fmt.Printf("step %d: %s\n", entry.Step, entry.Output)
	}

	printMarkdown(out)
	return nil
}

func runQA(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("qa", flag.ExitOnError)
	configPath, envFile, _ := commonFlags(fs)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("qa: expected exactly one question argument")
	}

	eng, err := setup(*configPath, *envFile)
	if err != nil {
		return err
	}

	qa, err := eng.QAChain()
	if err != nil {
		return err
	}

	out, err := qa.Run(ctx, fs.Arg(0))
	if err != nil {
		if errors.Is(err, retrieval.ErrNoContext) {
			fmt.Println("No relevant documents found. Ingest some first with `chainy ingest`.")
			return nil
		}
		return err
	}

	printMarkdown(out)
	return nil
}

func runIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath, envFile, _ := commonFlags(fs)
	chunkSize := fs.Int("chunk-size", 0, "chunk size in characters (0 for default)")
	chunkOverlap := fs.Int("chunk-overlap", 0, "overlap between chunks in characters (0 for default)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("ingest: expected exactly one file argument")
	}

	if err := loadDotEnv(*envFile); err != nil {
		return err
	}

	var (
		cfg engine.Config
		err error
	)
	if *configPath != "" {
		cfg, err = engine.LoadConfig(*configPath)
	} else {
		cfg, err = engine.FromEnv()
	}
	if err != nil {
		return err
	}

	if cfg.Retrieval.URL == "" {
		return errors.New("ingest: retrieval url is not configured")
	}

	store, err := weaviate.New(weaviate.Config{
		URL:          cfg.Retrieval.URL,
		Class:        cfg.Retrieval.Class,
		ContentField: cfg.Retrieval.ContentField,
	})
	if err != nil {
		return err
	}

	pages, err := docs.TextLoader{}.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	chunks, err := docs.Chunk(pages, docs.ChunkOptions{Size: *chunkSize, Overlap: *chunkOverlap})
	if err != nil {
		return err
	}

	if err := store.AddPassages(ctx, chunks); err != nil {
		return err
	}

	fmt.Printf("Ingested %d chunks from %s\n", len(chunks), fs.Arg(0))
	return nil
}

// adapterFor returns the named adapter, or the default one when name is empty.
func adapterFor(eng *engine.Engine, name string) (*modeladapter.Adapter, error) {
	if name == "" {
		return eng.Default(), nil
	}
	return eng.Adapter(name)
}

// printMarkdown renders text as markdown when a terminal renderer is
// available, falling back to plain output.
func printMarkdown(text string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(strings.TrimSpace(text))
		return
	}

	out, err := r.Render(text)
	if err != nil {
		fmt.Println(strings.TrimSpace(text))
		return
	}

	fmt.Print(out)
}
