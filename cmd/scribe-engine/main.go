package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/scribe-engine/internal/api"
	"github.com/snarg/scribe-engine/internal/audio"
	"github.com/snarg/scribe-engine/internal/config"
	"github.com/snarg/scribe-engine/internal/database"
	"github.com/snarg/scribe-engine/internal/reassemble"
	"github.com/snarg/scribe-engine/internal/store"
	"github.com/snarg/scribe-engine/internal/watch"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var (
		flagFile       = flag.String("file", "", "transcribe a single WAV file and exit")
		flagPlain      = flag.Bool("plain", false, "print raw text even when speakers are present")
		flagEnv        = flag.String("env", "", "path to .env file")
		flagWhisperURL = flag.String("whisper-url", "", "Whisper API endpoint (overrides WHISPER_URL)")
		flagWatchDir   = flag.String("watch-dir", "", "directory to watch for recordings (overrides WATCH_DIR)")
		flagHTTPAddr   = flag.String("http-addr", "", "HTTP listen address (overrides HTTP_ADDR)")
		flagLogLevel   = flag.String("log-level", "", "log level (overrides LOG_LEVEL)")
	)
	flag.Parse()

	cfg, err := config.Load(config.Overrides{
		EnvFile:    *flagEnv,
		WhisperURL: *flagWhisperURL,
		WatchDir:   *flagWatchDir,
		HTTPAddr:   *flagHTTPAddr,
		LogLevel:   *flagLogLevel,
	})
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("scribe-engine starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database is optional; without it transcripts are not persisted.
	var db *database.DB
	if cfg.DatabaseURL != "" {
		dbLog := log.With().Str("component", "database").Logger()
		db, err = database.Connect(ctx, cfg.DatabaseURL, dbLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		if err := db.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize schema")
		}
	}

	// S3 sink is optional.
	var sink *store.S3Sink
	if cfg.S3Configured() {
		sink, err = store.NewS3Sink(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create s3 sink")
		}
		if err := sink.HeadBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.S3Bucket).Msg("s3 bucket check failed")
		}
	}

	p := newPipeline(cfg, db, sink, log)

	// One-shot mode: transcribe a single file, print, exit.
	if *flagFile != "" {
		tr, err := p.processFile(ctx, *flagFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", *flagFile).Msg("transcription failed")
		}
		if tr.Diarized() && !*flagPlain {
			segs := reassemble.NormalizeSpeakers(
				reassemble.Resegment(tr.Words, reassemble.DefaultResegmentOptions()))
			fmt.Println(reassemble.FormatDiarized(segs))
		} else {
			fmt.Println(tr.Text)
		}
		if !tr.Complete() {
			log.Warn().Int("gaps", len(tr.Gaps)).Msg("transcript has gaps")
			os.Exit(2)
		}
		return
	}

	// Service mode: watch directory plus HTTP surface.
	var watcher *watch.Watcher
	if cfg.WatchDir != "" {
		watcher = watch.New(cfg.WatchDir, func(ctx context.Context, path string) {
			if _, err := p.processFile(ctx, path); err != nil {
				log.Error().Err(err).Str("file", path).Msg("watched file failed")
			}
		}, log)
		if err := watcher.Start(ctx); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.WatchDir).Msg("failed to start watcher")
		}
		defer watcher.Stop()
	}

	httpLog := log.With().Str("component", "http").Logger()
	var watcherStatus api.WatcherStatus
	if watcher != nil {
		watcherStatus = watcher
	}
	srv := api.NewServer(cfg, db, watcherStatus, version, startTime, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("scribe-engine stopped")
}

func decodeRecording(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return audio.DecodeWAV(f)
}
