package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nhzaci/ip/pkg/auth"
	"github.com/nhzaci/ip/pkg/config"
	"github.com/nhzaci/ip/pkg/google"
	"github.com/nhzaci/ip/pkg/index"
	"github.com/nhzaci/ip/pkg/orgmode"
	"github.com/nhzaci/ip/pkg/overdue"
	"github.com/nhzaci/ip/pkg/render"
	"github.com/nhzaci/ip/pkg/session"
	"github.com/nhzaci/ip/pkg/storage"
	"github.com/nhzaci/ip/pkg/ui"
)

func main() {
	// 1. Parse Flags
	dataFile := flag.String("data", "", "Task data file (overrides config)")
	calendarName := flag.String("calendar", "", "Google Calendar name to sync with (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar")
	doSync := flag.Bool("sync", false, "Sync deadlines and events to Google Calendar")
	useTUI := flag.Bool("tui", false, "Run the interactive terminal UI")
	importOrg := flag.String("import-org", "", "Comma separated Org-mode files to import")
	importMatch := flag.String("import-match", "", "Only import Org-mode headings containing this word")
	flag.Parse()

	// 2. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("could not load config", "err", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("unknown log level, keeping default", "level", cfg.LogLevel)
	}

	// 3. Handle Set Calendar
	if *setCalendar != "" {
		cfg.Calendar = *setCalendar
		if err := config.Save(cfg); err != nil {
			log.Fatal("could not save config", "err", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 4. Handle Authentication
	if *doAuth {
		if err := auth.ResetToken(); err != nil {
			log.Fatal("could not remove old token", "err", err)
		}
		if _, err := auth.GetCalendarService(ctx); err != nil {
			log.Fatal("authentication failed", "err", err)
		}
		path, _ := auth.TokenPath()
		log.Info("authentication successful", "token", path)
		return
	}

	// 5. Build Session
	if *dataFile != "" {
		cfg.DataFile = *dataFile
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}
	sess, err := newSession(ctx, cfg, *doSync || cfg.Sync)
	if err != nil {
		log.Fatal("could not start", "err", err)
	}

	// 6. Handle Import
	if *importOrg != "" {
		tasks, err := orgmode.ParseFiles(strings.Split(*importOrg, ","))
		if err != nil {
			log.Fatal("could not read org files", "err", err)
		}
		if *importMatch != "" {
			tasks = orgmode.FilterTasks(tasks, *importMatch)
		}
		reply, err := sess.Import(ctx, tasks)
		if err != nil {
			log.Fatal("import failed", "err", err)
		}
		fmt.Println(reply)
		return
	}

	greeting := render.Greeting()
	if cfg.OverdueWarning {
		if report := sess.SweepOverdue(ctx); report != "" {
			greeting += "\n" + report
		}
	}

	// 7. Run Front End
	if *useTUI {
		if err := ui.Run(ctx, sess, greeting); err != nil {
			log.Fatal("terminal ui failed", "err", err)
		}
		return
	}
	if err := runLoop(ctx, sess, greeting); err != nil {
		log.Fatal("session ended with error", "err", err)
	}
}

func newSession(ctx context.Context, cfg *config.Config, sync bool) (*session.Session, error) {
	store, err := storage.NewFile(cfg.DataFile)
	if err != nil {
		return nil, err
	}

	var (
		opts     []session.Option
		evtIndex *index.EventIndex
	)
	table, err := overdue.NewTable(filepath.Dir(cfg.DataFile))
	if err != nil {
		log.Warn("failed to initialize overdue table", "err", err)
	} else {
		opts = append(opts, session.WithOverdueTable(table))
	}

	if sync {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		evtIndex, err = index.NewEventIndex(dir)
		if err != nil {
			log.Warn("failed to initialize event index", "err", err)
		}
		gClient, err := google.NewClient(ctx, cfg.Calendar, evtIndex)
		if err != nil {
			log.Error("calendar sync disabled", "err", err)
		} else {
			opts = append(opts, session.WithSyncer(gClient))
		}
	}

	sess, err := session.New(store, opts...)
	if err != nil {
		return nil, err
	}

	// Links to tasks deleted while sync was off are stale.
	if evtIndex != nil {
		if dropped := evtIndex.Retain(sess.List().Tasks()); dropped > 0 {
			log.Info("pruned event index", "dropped", dropped)
			if err := evtIndex.Save(); err != nil {
				log.Warn("could not save event index", "err", err)
			}
		}
	}
	return sess, nil
}

func runLoop(ctx context.Context, sess *session.Session, greeting string) error {
	fmt.Println(greeting)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		reply, exit, err := sess.Execute(ctx, scanner.Text())
		if err != nil {
			return err
		}
		fmt.Println(reply)
		if exit {
			return nil
		}
	}
	return scanner.Err()
}
