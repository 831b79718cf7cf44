// Command subtext builds sub-word vocabularies and trains token-classifier
// embedding models from NDJSON corpora.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/crimson-sun/subtext/internal/config"
	"github.com/crimson-sun/subtext/internal/fetch"
	"github.com/crimson-sun/subtext/internal/logging"
	"github.com/crimson-sun/subtext/internal/model"
	"github.com/crimson-sun/subtext/internal/trainer"
	"github.com/crimson-sun/subtext/internal/vocabulary"
)

const usage = `subtext builds sub-word vocabularies and token embedding models.

Usage:
  subtext vocab   -corpus <corpus.json> [-config <file>] [-out <voc.json.gz>]
  subtext train   -corpus <corpus.json> -voc <voc.json.gz> [-config <file>] [-out <model.json.gz>]
  subtext convert -in <model.json.gz> -out <converted.json.gz> [-from float32] [-to float16]
  subtext fetch   -name <artifact> [-config <file>]

Configuration is read from the YAML file given by -config, with SUBTEXT_*
environment variables (and an optional .env file) taking precedence.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "vocab":
		err = runVocab(os.Args[2:])
	case "train":
		err = runTrain(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "fetch":
		err = runFetch(os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("subtext: %v", err)
	}
}

func runVocab(args []string) error {
	fs := flag.NewFlagSet("vocab", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	corpusPath := fs.String("corpus", "", "NDJSON corpus file")
	out := fs.String("out", "", "vocabulary output path")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))

	if *corpusPath == "" {
		*corpusPath = cfg.Corpus.Path
	}
	if *corpusPath == "" {
		return fmt.Errorf("vocab: no corpus given (use -corpus or corpus.path)")
	}

	p := model.DefaultParams(cfg.Vocabulary.Lang)
	p.SizeExponent = cfg.Vocabulary.SizeExponent
	if len(cfg.Vocabulary.TokenList) > 0 {
		p.TokenList = cfg.Vocabulary.TokenList
	}

	b := vocabulary.NewBuilder(p,
		vocabulary.WithPrefixSuffix(cfg.Vocabulary.PrefixSuffix),
		vocabulary.WithLimit(cfg.Corpus.Limit),
		vocabulary.WithWorkers(cfg.Training.Workers),
	)

	ctx, cancel := signalContext()
	defer cancel()

	voc, err := b.Build(ctx, *corpusPath)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, voc.Identifier()+".json.gz")
	}
	if err := vocabulary.Save(voc, path); err != nil {
		return err
	}
	slog.Info("vocabulary written", "path", path, "tokens", voc.Size())
	return nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	corpusPath := fs.String("corpus", "", "NDJSON corpus file")
	vocPath := fs.String("voc", "", "vocabulary artifact")
	out := fs.String("out", "", "model output path")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))

	if *corpusPath == "" {
		*corpusPath = cfg.Corpus.Path
	}
	if *corpusPath == "" {
		return fmt.Errorf("train: no corpus given (use -corpus or corpus.path)")
	}
	if *vocPath == "" {
		return fmt.Errorf("train: no vocabulary given (use -voc)")
	}

	voc, err := vocabulary.Load(*vocPath)
	if err != nil {
		return err
	}
	precision, err := model.ParsePrecision(cfg.Training.Precision)
	if err != nil {
		return err
	}

	opts := []trainer.Option{
		trainer.WithMinPos(cfg.Training.MinPos),
		trainer.WithMaxPos(cfg.Training.MaxPos),
		trainer.WithNegativeCap(cfg.Training.NegativeCap),
		trainer.WithWorkers(cfg.Training.Workers),
		trainer.WithPrecision(precision),
		trainer.WithLimit(cfg.Corpus.Limit),
		trainer.WithSeed(cfg.Training.Seed),
	}
	if cfg.Training.StagingDir != "" {
		opts = append(opts, trainer.WithStagingDir(cfg.Training.StagingDir))
	}
	tr, err := trainer.New(voc, opts...)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, voc.Identifier()+"_model.json.gz")
	}

	ctx, cancel := signalContext()
	defer cancel()

	sum, err := tr.TrainAll(ctx, *corpusPath, path)
	if err != nil {
		return err
	}
	slog.Info("training complete",
		"path", path,
		"records", sum.Records,
		"feasible", sum.Feasible,
		"trained", sum.Trained,
		"resumed", sum.Resumed,
		"skipped", sum.Skipped,
	)
	return nil
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "model artifact to convert")
	out := fs.String("out", "", "converted model path")
	from := fs.String("from", "float32", "source precision")
	to := fs.String("to", "float16", "target precision")
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("convert: -in and -out are required")
	}
	src, err := model.ParsePrecision(*from)
	if err != nil {
		return err
	}
	dst, err := model.ParsePrecision(*to)
	if err != nil {
		return err
	}
	return trainer.Convert(*in, *out, src, dst)
}

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	name := fs.String("name", "", "artifact file name, e.g. subtext_es_13_model.json.gz")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))

	if *name == "" {
		return fmt.Errorf("fetch: -name is required")
	}

	ctx, cancel := signalContext()
	defer cancel()

	c := fetch.New(fetch.WithBaseURL(cfg.Remote.BaseURL), fetch.WithCacheDir(cfg.Remote.CacheDir))
	path, err := c.Fetch(ctx, *name)
	if err != nil {
		return err
	}
	// The local path goes to stdout so shells can capture it; logs stay on stderr.
	fmt.Println(path)
	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received %v, stopping\n", sig)
		cancel()
	}()
	return ctx, cancel
}
