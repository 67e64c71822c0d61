package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"boinkfarm/client"
	"boinkfarm/config"
	"boinkfarm/constant"
	"boinkfarm/credential"
	"boinkfarm/logger"
	"boinkfarm/notify"
	"boinkfarm/proxy"
	"boinkfarm/tapper"
	"boinkfarm/useragent"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:  "boinkfarm",
		Usage: "Farm Boinkers rewards for every session in the sessions file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "path to the .env file",
			},
			&cli.StringSliceFlag{
				Name:  "session",
				Usage: "only farm the named session (repeatable)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer log.Sync()

	sessions, err := credential.ParseSessionsFile(cfg.SessionsFile, log)
	if err != nil {
		log.Fatal("Error parsing sessions file", zap.Error(err))
	}
	sessions = filterSessions(sessions, c.StringSlice("session"))
	if len(sessions) == 0 {
		log.Fatal("No sessions to farm", zap.String("file", cfg.SessionsFile))
	}

	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Name)
	}

	proxies := map[string]string{}
	if cfg.UseProxy {
		list, err := proxy.ReadFile(cfg.ProxyFile, log)
		if err != nil {
			log.Fatal("Error reading proxy file", zap.Error(err))
		}
		distributor := proxy.NewDistributor(names, list, log)
		if err := distributor.Validate(); err != nil {
			log.Fatal("Proxy distribution validation failed", zap.Error(err))
		}
		proxies = distributor.Distribute()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := notify.NewBoard(names...)
	if cfg.BotToken != "" {
		b, err := notify.NewBot(cfg.BotToken, board, log)
		if err != nil {
			log.Error("Error creating telegram bot, status reports disabled", zap.Error(err))
		} else {
			go b.Start(ctx)
		}
	}

	agents := useragent.Load(cfg.UserAgentsFile, log)
	referral := credential.NewReferral(cfg.RefID, constant.DefaultRefID, constant.RefIDWeight,
		rand.New(rand.NewSource(time.Now().UnixNano())))

	var wg sync.WaitGroup
	for _, session := range sessions {
		ua, err := agents.Get(session.Name)
		if err != nil {
			log.Warn("Failed to persist user agent", zap.String("session", session.Name), zap.Error(err))
		}

		api, err := client.New(client.Options{
			ProxyURL:          proxies[session.Name],
			UserAgent:         ua,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Logger:            log.With(zap.String("session", session.Name)),
		})
		if err != nil {
			log.Error("Error creating client", zap.String("session", session.Name), zap.Error(err))
			continue
		}

		t := tapper.New(tapper.Options{
			Name:          session.Name,
			API:           api,
			Credentials:   credential.NewStaticProvider(session, referral),
			Logger:        log,
			Reporter:      board,
			CycleInterval: cfg.CycleInterval,
		})

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			farm(ctx, log.With(zap.String("session", name)), api, t)
		}(session.Name)
	}

	wg.Wait()
	log.Info("All sessions stopped")
	return nil
}

func farm(ctx context.Context, log *zap.Logger, api *client.Client, t *tapper.Tapper) {
	if api.Proxy() != "" {
		ip, err := api.ProxyIP(ctx)
		if err != nil {
			log.Error("Proxy check failed", zap.String("proxy", api.Proxy()), zap.Error(err))
		} else {
			log.Info("Proxy IP", zap.String("ip", ip))
		}
	}

	err := t.Run(ctx)
	switch {
	case errors.Is(err, credential.ErrInvalidSession):
		log.Error("Invalid session, stopping", zap.Error(err))
	case errors.Is(err, context.Canceled):
		log.Info("Stopped")
	case err != nil:
		log.Error("Farming stopped", zap.Error(err))
	}
}

func filterSessions(sessions []credential.Session, only []string) []credential.Session {
	if len(only) == 0 {
		return sessions
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var out []credential.Session
	for _, s := range sessions {
		if wanted[s.Name] {
			out = append(out, s)
		}
	}
	return out
}
