package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"bookql/internal/book"
	"bookql/internal/config"
	"bookql/internal/platform/database"
	"bookql/internal/platform/logger"
)

func main() {
	os.Exit(start())
}

func start() int {
	skipIfPresent := flag.Bool("skip-if-present", true, "do nothing when the books table already has rows")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.DatabaseDSN, 5*time.Second)
	if err != nil {
		log.Error("open database", zap.Error(err))
		return 1
	}
	defer pool.Close()

	svc := book.NewService(book.NewPostgresRepo(pool, cfg.DatabaseTimeout))
	n, err := seed(ctx, svc, *skipIfPresent)
	if err != nil {
		log.Error("seed books", zap.Error(err))
		return 1
	}
	log.Info("seed finished", zap.Int("inserted", n))
	return 0
}

type sample struct {
	title, author, year string
	review              int32
}

var samples = []sample{
	{"Dune", "Frank Herbert", "1965", 5},
	{"Emma", "Jane Austen", "1815", 4},
	{"Ulysses", "James Joyce", "1922", 3},
	{"Beloved", "Toni Morrison", "1987", 5},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "1969", 5},
	{"Things Fall Apart", "Chinua Achebe", "1958", 4},
	{"One Hundred Years of Solitude", "Gabriel Garcia Marquez", "1967", 5},
	{"Never Let Me Go", "Kazuo Ishiguro", "2005", 4},
}

// seed inserts the sample books through svc so every row passes the same
// validation as API writes.
func seed(ctx context.Context, svc *book.Service, skipIfPresent bool) (int, error) {
	if skipIfPresent {
		existing, err := svc.List(ctx)
		if err != nil {
			return 0, err
		}
		if len(existing) > 0 {
			return 0, nil
		}
	}

	inserted := 0
	for _, s := range samples {
		s := s
		_, err := svc.Create(ctx, book.Input{
			Title:         &s.title,
			Author:        &s.author,
			YearPublished: &s.year,
			Review:        &s.review,
		})
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
