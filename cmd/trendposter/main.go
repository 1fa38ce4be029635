package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	_ "time/tzdata" // posting hours timezone must resolve on minimal images

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/trendposter/pkg/config"
	"github.com/umputun/trendposter/pkg/llm"
	"github.com/umputun/trendposter/pkg/notify"
	"github.com/umputun/trendposter/pkg/poster"
	"github.com/umputun/trendposter/pkg/repository"
	"github.com/umputun/trendposter/pkg/scheduler"
	"github.com/umputun/trendposter/pkg/trend"
	"github.com/umputun/trendposter/server"
)

// Opts with all CLI options
type Opts struct {
	Config    string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Env       string `long:"env" env:"ENV_FILE" default:".env" description:"dotenv file with secrets for config expansion, ignored if missing"`
	Listen    string `short:"l" long:"listen" env:"LISTEN" description:"listen address, overrides config"`
	DryRun    bool   `long:"dry-run" description:"run a single dry-run cycle, print the result and exit"`
	SkipCheck bool   `long:"skip-check" env:"SKIP_CHECK" description:"skip x credentials check on startup"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	color.NoColor = color.NoColor || opts.NoColor
	setupLog(opts.Debug)
	log.Printf("[INFO] starting trendposter version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires all components and blocks until ctx is canceled, or a single dry run completes
func run(ctx context.Context, opts Opts) error {
	// secrets may live in a dotenv file, config values reference them as ${VAR}
	if opts.Env != "" {
		if err := godotenv.Load(opts.Env); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", opts.Env, err)
		}
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLog(opts.Debug, cfg.Secrets()...)
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		MaxQueued:       cfg.Queue.MaxSize,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	sources, err := trend.SourcesByName(cfg.Trends.Sources, cfg.Trends.URLs)
	if err != nil {
		return fmt.Errorf("failed to configure trend sources: %w", err)
	}
	fetcher := trend.NewFetcher(trend.Params{
		Sources:   sources,
		Country:   cfg.Trends.Country,
		Geo:       cfg.Trends.Geo,
		Timeout:   cfg.Trends.Timeout,
		MaxTrends: cfg.Trends.MaxTrends,
		UserAgent: cfg.Trends.UserAgent,
	})

	completer, llmCfg, err := llm.New(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to configure llm: %w", err)
	}
	log.Printf("[INFO] llm provider %s, model %s", llmCfg.Provider, llmCfg.Model)

	xPoster := poster.NewXPoster(poster.XParams{
		APIKey:       cfg.X.APIKey,
		APISecret:    cfg.X.APISecret,
		AccessToken:  cfg.X.AccessToken,
		AccessSecret: cfg.X.AccessSecret,
		APIHost:      cfg.X.APIHost,
		UploadURL:    cfg.X.UploadURL,
	})
	if !opts.SkipCheck && !opts.DryRun && !xPoster.ValidateCredentials(ctx) {
		return errors.New("x api credentials are invalid, check x section of the config")
	}

	sched := scheduler.NewScheduler(scheduler.Params{
		Queue:             repos.Drafts,
		Trends:            fetcher,
		Completer:         completer,
		Poster:            xPoster,
		Notifier:          makeNotifier(cfg.Notify),
		Location:          loc,
		PostingHoursStart: cfg.Schedule.PostingHoursStart,
		PostingHoursEnd:   cfg.Schedule.PostingHoursEnd,
		MinRelevanceScore: cfg.Schedule.MinRelevanceScore,
		MaxAge:            cfg.Queue.MaxAge,
	})

	if opts.DryRun {
		res, err := sched.RunCycle(ctx, true)
		if err != nil {
			return fmt.Errorf("dry run failed: %w", err)
		}
		printResult(os.Stdout, res)
		return nil
	}

	if cfg.Schedule.AutoPost {
		trigger, err := scheduler.NewTrigger(scheduler.TriggerParams{Runner: sched, Interval: cfg.Schedule.CheckInterval,
			Timeout: cfg.Schedule.CycleTimeout, Location: loc})
		if err != nil {
			return fmt.Errorf("failed to make cycle trigger: %w", err)
		}
		trigger.Start(ctx)
		defer trigger.Stop()
	} else {
		log.Printf("[INFO] automatic posting disabled, cycles run on demand only")
	}

	if cfg.Server.Listen == "" {
		<-ctx.Done()
		return nil
	}

	srv := server.New(repos.Drafts, sched, fetcher, server.Params{
		Listen:         cfg.Server.Listen,
		Timeout:        cfg.Server.Timeout,
		AuthUser:       cfg.Server.AuthUser,
		AuthPassword:   cfg.Server.AuthPassword,
		ManualCooldown: cfg.Schedule.ManualCooldown,
		Version:        revision,
		Debug:          opts.Debug,
		Info: server.StatusInfo{
			Provider:          llmCfg.Provider,
			Model:             llmCfg.Model,
			CheckInterval:     cfg.Schedule.CheckInterval.String(),
			PostingHoursStart: cfg.Schedule.PostingHoursStart,
			PostingHoursEnd:   cfg.Schedule.PostingHoursEnd,
			MinRelevanceScore: cfg.Schedule.MinRelevanceScore,
			Timezone:          cfg.Schedule.Timezone,
			AutoPost:          cfg.Schedule.AutoPost,
		},
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// makeNotifier always logs, telegram is added when configured
func makeNotifier(cfg config.NotifyConfig) notify.Notifier {
	res := notify.Multi{notify.Log{}}
	if cfg.Telegram.Token != "" {
		res = append(res, notify.NewTelegram(notify.TelegramParams{Token: cfg.Telegram.Token, ChatID: cfg.Telegram.ChatID}))
	}
	return res
}

func printResult(w io.Writer, res scheduler.CycleResult) {
	fmt.Fprintf(w, "cycle %s: %s\n", res.ID, res.Outcome)
	if a := res.Analysis; a != nil {
		fmt.Fprintf(w, "draft #%d: %q\ntrend: %s\nscore: %d/100\nreason: %s\n", a.DraftID, a.DraftText, a.MatchedTrend, a.Score, a.Reasoning)
	}
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
