package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foodcal/internal/app"
	"foodcal/internal/config"
	"foodcal/internal/database"
	"foodcal/internal/entry"
	"foodcal/internal/food"
	"foodcal/internal/ics"
	applog "foodcal/internal/log"
	"foodcal/internal/schedule"
	"foodcal/internal/server"
)

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "serve":
		runServe(args)
	case "generate":
		runGenerate(args)
	case "cleanup":
		runCleanup(args)
	case "export":
		runExport(args)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: foodcal <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve       Run the HTTP API and ICS feed (default)")
	fmt.Println("  generate    Generate schedule entries for one food or all foods")
	fmt.Println("  cleanup     Remove old uncompleted schedule entries")
	fmt.Println("  export      Print the ICS calendar to stdout")
}

// setup loads config and wires the repositories into an App. The returned
// close function releases the database.
func setup(configPath string) (*config.Config, *app.App, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	application := app.New(cfg, food.NewRepository(db.SQL), entry.NewRepository(db.SQL))
	return cfg, application, func() { db.Close() }, nil
}

func fatal(msg string, err error) {
	applog.Error(msg, err)
	os.Exit(1)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "foodcal.yaml", "Path to config file")
	listen := fs.String("listen", "", "HTTP listen address (overrides config if set)")
	fs.Parse(args)

	cfg, application, closeDB, err := setup(*configPath)
	if err != nil {
		fatal("startup failed", err)
	}
	defer closeDB()

	if *listen != "" {
		cfg.Listen = *listen
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		applog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Top up the calendar on boot, then keep it topped up on the cron.
	if err := application.RegenerateAll(ctx); err != nil {
		applog.Error("startup regeneration failed", err)
	}
	if err := application.StartScheduler(); err != nil {
		fatal("scheduler failed", err)
	}
	defer application.StopScheduler()

	if err := server.New(cfg, application).Run(ctx); err != nil {
		fatal("server failed", err)
	}
	applog.Info("foodcal exiting")
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "foodcal.yaml", "Path to config file")
	foodID := fs.String("food", "", "Generate for a single food ID (default: all foods)")
	from := fs.String("from", "", "Range start, YYYY-MM-DD (default: the food's own window)")
	to := fs.String("to", "", "Range end, YYYY-MM-DD")
	fs.Parse(args)

	_, application, closeDB, err := setup(*configPath)
	if err != nil {
		fatal("startup failed", err)
	}
	defer closeDB()

	ctx := context.Background()

	if *foodID == "" {
		if err := application.RegenerateAll(ctx); err != nil {
			fatal("generation failed", err)
		}
		return
	}

	f, err := application.Foods().Get(ctx, *foodID)
	if err != nil {
		fatal("failed to load food", err)
	}
	if f == nil {
		fatal("food not found", fmt.Errorf("no food with id %s", *foodID))
	}

	rangeFrom, rangeTo := application.Window(*f)
	if *from != "" {
		if rangeFrom, err = time.ParseInLocation(schedule.DateFormat, *from, application.Location()); err != nil {
			fatal("invalid -from date", err)
		}
	}
	if *to != "" {
		if rangeTo, err = time.ParseInLocation(schedule.DateFormat, *to, application.Location()); err != nil {
			fatal("invalid -to date", err)
		}
	}

	inserted, skipped, err := application.Generate(ctx, *f, rangeFrom, rangeTo)
	if err != nil {
		fatal("generation failed", err)
	}
	fmt.Printf("Generated %d entries for %q (%d already existed).\n", inserted, f.Name, skipped)
}

func runCleanup(args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	configPath := fs.String("config", "foodcal.yaml", "Path to config file")
	days := fs.Int("days", 30, "Remove uncompleted entries older than N days")
	fs.Parse(args)

	_, application, closeDB, err := setup(*configPath)
	if err != nil {
		fatal("startup failed", err)
	}
	defer closeDB()

	removed, err := application.CleanupOld(context.Background(), *days)
	if err != nil {
		fatal("cleanup failed", err)
	}
	fmt.Printf("Removed %d old schedule entries.\n", removed)
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "foodcal.yaml", "Path to config file")
	fs.Parse(args)

	cfg, application, closeDB, err := setup(*configPath)
	if err != nil {
		fatal("startup failed", err)
	}
	defer closeDB()

	foods, err := application.Foods().List(context.Background())
	if err != nil {
		fatal("failed to list foods", err)
	}
	fmt.Print(ics.Build(foods, cfg.HorizonDays, application.Location()))
}
