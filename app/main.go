package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EthanLeitch/ao3scraper/app/ao3"
	"github.com/EthanLeitch/ao3scraper/app/cfg"
	"github.com/EthanLeitch/ao3scraper/app/config"
	"github.com/EthanLeitch/ao3scraper/app/database"
	"github.com/EthanLeitch/ao3scraper/app/reconcile"
	"github.com/EthanLeitch/ao3scraper/app/table"
)

const tableTitle = "Fanfics"

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	switch {
	case appCfg.Scrape:
		return runScrape(appCfg)
	case appCfg.Cache:
		return runCache(appCfg)
	case appCfg.List:
		return runList(appCfg)
	case appCfg.Add != "":
		return runAdd(appCfg, appCfg.Add)
	case appCfg.AddURLs:
		return runAddURLs(appCfg)
	case appCfg.Delete != 0:
		return runDelete(appCfg, appCfg.Delete)
	case appCfg.ShowInfo:
		fmt.Printf("Version: %s\nData location: %s\nConfig location: %s\n",
			appCfg.Version, appCfg.DataDir, appCfg.ConfigDir)
		return nil
	default:
		cfg.WriteHelp(os.Stdout)
		return nil
	}
}

func runScrape(appCfg *cfg.Cfg) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	db, repo, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	client := ao3.NewClient(&http.Client{}, appCfg.UserAgent)
	engine := reconcile.NewEngine(client, repo, appCfg.WorkerCount,
		time.Duration(appCfg.FetchTimeout)*time.Second,
		time.Duration(appCfg.PingTimeout)*time.Second,
		displayOptions(displayCfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("Checking if AO3 servers are online...")
	outcomes, err := engine.Run(ctx)
	if err != nil {
		if errors.Is(err, ao3.ErrServiceUnreachable) {
			return err
		}
		return fmt.Errorf("scrape failed: %w", err)
	}

	renderer := table.NewRenderer(displayCfg)
	fmt.Println(renderer.RenderOutcomes(tableTitle, outcomes))

	report := table.CachedReport{
		Title:       tableTitle,
		GeneratedAt: time.Now().UTC(),
		Outcomes:    outcomes,
	}
	if err := table.NewReportCache(appCfg.ReportCachePath()).Save(report); err != nil {
		slog.Warn("Failed to cache report", "error", err)
	}

	return nil
}

func runCache(appCfg *cfg.Cfg) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	report, err := table.NewReportCache(appCfg.ReportCachePath()).Load()
	if err != nil {
		return err
	}

	renderer := table.NewRenderer(displayCfg)
	fmt.Println(renderer.RenderOutcomes(report.Title+" (cached)", report.Outcomes))

	return nil
}

func runList(appCfg *cfg.Cfg) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	db, repo, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return listWorks(repo, displayCfg)
}

func runAdd(appCfg *cfg.Cfg, entry string) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	db, repo, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := ao3.WorkIDFromURL(entry)
	if err != nil {
		return err
	}

	switch err := repo.CreateWork(id); {
	case errors.Is(err, database.ErrDuplicateWork):
		fmt.Printf("%d already in database.\n", id)
	case err != nil:
		return err
	default:
		fmt.Println("Added", entry)
	}

	return listWorks(repo, displayCfg)
}

func runAddURLs(appCfg *cfg.Cfg) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	db, repo, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	urls, err := editURLList()
	if err != nil {
		return err
	}

	for _, entry := range urls {
		id, err := ao3.WorkIDFromURL(entry)
		if err != nil {
			fmt.Printf("%s is not a valid url.\n", entry)
			continue
		}
		switch err := repo.CreateWork(id); {
		case errors.Is(err, database.ErrDuplicateWork):
			fmt.Printf("%s already in database.\n", entry)
		case err != nil:
			return err
		default:
			fmt.Println("Added", entry)
		}
	}

	return listWorks(repo, displayCfg)
}

func runDelete(appCfg *cfg.Cfg, entry int) error {
	displayCfg, err := config.NewLoader(appCfg.ConfigFilePath()).Run()
	if err != nil {
		return err
	}

	db, repo, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	works, err := repo.GetAllWorks()
	if err != nil {
		return err
	}
	if entry < 1 || entry > len(works) {
		return fmt.Errorf("number out of index range")
	}

	if err := repo.DeleteWork(works[entry-1].ID); err != nil {
		return err
	}
	fmt.Println("Deleted entry number", entry)

	return listWorks(repo, displayCfg)
}

func listWorks(repo database.WorkRepository, displayCfg *config.Config) error {
	works, err := repo.GetAllWorks()
	if err != nil {
		return err
	}

	renderer := table.NewRenderer(displayCfg)
	fmt.Println(renderer.RenderWorks(tableTitle, works, displayOptions(displayCfg)))

	return nil
}

func openStore(appCfg *cfg.Cfg) (*database.DB, database.WorkRepository, error) {
	db, err := database.NewConnection(appCfg.DatabasePath())
	if err != nil {
		return nil, nil, err
	}
	if err := database.CheckSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, database.NewWorkRepository(db), nil
}

func displayOptions(displayCfg *config.Config) reconcile.Options {
	return reconcile.Options{
		StaleThreshold: displayCfg.StaleThreshold,
		HighlightStale: displayCfg.HighlightStale,
		MaxRowLength:   displayCfg.MaxRowLength,
	}
}
