package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lrstanley/girc"

	"triggerbot/bot"
	"triggerbot/directory"
	"triggerbot/logger"
	"triggerbot/settings"
	"triggerbot/stem"
	"triggerbot/store"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := settings.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging)

	db, err := store.Open(cfg.Bot.Database)
	if err != nil {
		logger.Fatal("opening database failed", "path", cfg.Bot.Database, "error", err)
	}
	defer db.Close()
	go db.MergeLoop(24 * time.Hour)

	client := girc.New(girc.Config{
		Server:     cfg.Server.Host,
		Port:       cfg.Server.Port,
		ServerPass: cfg.Server.Pass,
		Nick:       cfg.Bot.Nick,
		User:       cfg.Bot.Nick,
		Name:       cfg.Bot.Nick,
		SSL:        cfg.Server.Ssl,
		TLSConfig:  &tls.Config{InsecureSkipVerify: true},
	})

	b := bot.New(cfg, directory.New(), db, &ircTransport{c: client}, stem.New())
	if err := b.Load(); err != nil {
		logger.Fatal("restoring state failed", "error", err)
	}
	bindHandlers(client, b)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()

	go func() {
		<-ctx.Done()
		client.Quit("Shutting down. Goodbye.")
	}()

	for {
		logger.Info("connecting", "server", cfg.Server.Host, "port", cfg.Server.Port)
		if err := client.Connect(); err != nil {
			logger.Error("connection lost", "error", err)
		}
		if ctx.Err() != nil || !b.ShouldReconnect() {
			break
		}
		logger.Info("reconnecting in 30 seconds")
		select {
		case <-time.After(30 * time.Second):
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	// Let the event loop drain and checkpoint before the store closes.
	stop()
	<-done
}
