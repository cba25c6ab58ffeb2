package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/wiki-top/internal/config"
	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/feed"
	"github.com/nixlim/wiki-top/internal/report"
	"github.com/nixlim/wiki-top/internal/stats"
	"github.com/nixlim/wiki-top/internal/storage"
	"github.com/nixlim/wiki-top/internal/tui"
	"github.com/nixlim/wiki-top/internal/wiki"
)

func main() {
	userFlag := flag.String("user", "", "User whose contributions to load (may also be given as the first argument)")
	wikiFlag := flag.String("wiki", "enwiki", "Wiki database name (e.g. dewiki) or API URL")
	sinceFlag := flag.String("since", "", "Only chart edits from this month on, as YYYY/MM")
	refreshFlag := flag.Bool("refresh", false, "Ignore the cache and refetch the history")
	reportFlag := flag.Bool("report", false, "Print a text report instead of starting the dashboard")
	noColorFlag := flag.Bool("no-color", false, "Disable colours in the text report")
	debugFlag := flag.String("debug", "", "Write API request log (JSONL) to the specified file path")
	configFlag := flag.String("config", "", "Config file path (default ~/.config/wiki-top/config.toml)")
	initFlag := flag.Bool("init", false, "Write a default config file and exit")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	if *initFlag {
		RunInit(configPath)
		return
	}

	user := *userFlag
	if user == "" && flag.NArg() > 0 {
		user = flag.Arg(0)
	}
	if user == "" {
		fmt.Fprintln(os.Stderr, "wiki-top: no user given; usage: wiki-top [flags] -user NAME")
		os.Exit(2)
	}

	var since *contribs.Month
	if *sinceFlag != "" {
		m, err := contribs.ParseMonth(*sinceFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wiki-top: invalid -since: %v\n", err)
			os.Exit(2)
		}
		since = &m
	}

	loadResult, err := config.LoadFrom(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiki-top: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "wiki-top: config warning: %s\n", w)
	}

	store, isPersistent, err := storage.NewStore(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiki-top: storage error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var clientOpts []wiki.ClientOption
	if *debugFlag != "" {
		debugFile, err := os.OpenFile(*debugFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wiki-top: failed to open debug log %q: %v\n", *debugFlag, err)
			os.Exit(1)
		}
		defer debugFile.Close()
		clientOpts = append(clientOpts, wiki.WithLogger(wiki.NewFileLogger(debugFile)))
	}

	client := wiki.NewClient(cfg.Wiki, clientOpts...)
	loader := wiki.NewLoader(client, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "wiki-top: loading contributions of %s on %s...\n", user, *wikiFlag)
	session, err := loader.Load(ctx, wiki.Target{Wiki: *wikiFlag, User: user, Since: since}, *refreshFlag)
	if err != nil {
		switch {
		case errors.Is(err, wiki.ErrNoSuchUser):
			fmt.Fprintf(os.Stderr, "wiki-top: user %q does not exist on %s\n", user, *wikiFlag)
		case errors.Is(err, wiki.ErrUnknownWiki):
			fmt.Fprintf(os.Stderr, "wiki-top: %q is not a known wiki\n", *wikiFlag)
		default:
			fmt.Fprintf(os.Stderr, "wiki-top: %v\n", err)
		}
		os.Exit(1)
	}

	if *reportFlag {
		now := time.Now()
		dash := stats.NewCalculator(cfg.NamespaceColors).Compute(session, now)
		in := report.Input{
			Session: session,
			Stats:   dash,
			Recent:  feed.Recent(session.ScopedEdits(), cfg.Display.RecentEdits).ListNewestFirst(),
			Now:     now,
		}
		if err := report.NewPrinter(os.Stdout, !*noColorFlag).Write(in); err != nil {
			fmt.Fprintf(os.Stderr, "wiki-top: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log.SetOutput(io.Discard)

	model := tui.NewModel(cfg, session,
		tui.WithContext(ctx),
		tui.WithCoordinateLoader(loader),
		tui.WithPersistenceFlag(isPersistent),
		tui.WithOnShutdown(stop),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wiki-top: %v\n", err)
		os.Exit(1)
	}
}
