package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/glabrego/lemmer-cli/internal/account"
	"github.com/glabrego/lemmer-cli/internal/config"
	"github.com/glabrego/lemmer-cli/internal/feed"
	"github.com/glabrego/lemmer-cli/internal/inbox"
	"github.com/glabrego/lemmer-cli/internal/lemmy"
	"github.com/glabrego/lemmer-cli/internal/login"
	"github.com/glabrego/lemmer-cli/internal/session"
	"github.com/glabrego/lemmer-cli/internal/storage"
	"github.com/glabrego/lemmer-cli/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("log level error: %v", err)
	}
	logFile, err := os.OpenFile(cfg.DBPath+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logger := zerolog.New(logFile).Level(level).With().Timestamp().Logger()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}

	accounts, err := account.NewStore(ctx, repo)
	if err != nil {
		log.Fatalf("account store error: %v", err)
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	instance := cfg.Instance
	if acct, ok := accounts.Current(); ok {
		instance = acct.Instance
	}
	host := lemmy.NewHost(instance, httpClient)

	sess := session.NewController(host, host, accounts, cfg.Instance, logger)
	defer sess.Close()
	posts := feed.NewController(host, accounts, logger)
	defer posts.Close()
	messages := inbox.NewController(host, accounts, logger)
	defer messages.Close()
	auth := login.NewController(accounts, logger)

	model := tui.NewModel(host, sess, posts, messages, auth, accounts)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
