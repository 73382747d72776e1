package main

import (
	"context"
	"errors"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/buzzer"
	"code.sztanpet.net/zvpsz/buzzer/internal/config"
	"code.sztanpet.net/zvpsz/buzzer/internal/gpio"
	"code.sztanpet.net/zvpsz/buzzer/internal/storage"
	"code.sztanpet.net/zvpsz/buzzer/internal/telegram"
	"code.sztanpet.net/zvpsz/buzzer/internal/web"
	"github.com/juju/loggo"
	"golang.org/x/sync/errgroup"
)

type app struct {
	ctx  context.Context
	exit context.CancelFunc
	cfg  *config.Config

	bot     *telegram.Bot
	store   storage.Store
	drv     gpio.Driver
	ctrl    *buzzer.Controller
	startup *buzzer.InitTask
	queue   *buzzer.Queue
	web     *web.Server
}

var logger = loggo.GetLogger("buzzerd")

func main() {
	cfg := config.Get()
	ctx, exit := context.WithCancel(context.Background())
	a := &app{
		ctx:  ctx,
		exit: exit,
		cfg:  cfg,
	}

	if err := loggo.ConfigureLoggers(cfg.LogLevel); err != nil {
		logger.Warningf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}

	// logging sends messages to telegram, so it depends on it
	a.setupTelegram()
	a.setupLogging()
	a.handleSignals()

	a.setupStorage()
	a.setupBuzzer()
	a.setupWeb()

	if err := a.run(); err != nil {
		logger.Errorf("exiting: %v", err)
	}

	if closer, ok := a.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := a.drv.Close(); err != nil {
		logger.Debugf("closing gpio driver: %v", err)
	}

	// let the log writer flush to telegram
	time.Sleep(250 * time.Millisecond)
}

// run blocks until the context is cancelled or a worker fails.
func (a *app) run() error {
	g, ctx := errgroup.WithContext(a.ctx)

	g.Go(func() error {
		return a.queue.Run(ctx)
	})
	g.Go(func() error {
		return a.web.ListenAndServe(ctx, a.cfg.HTTPAddr)
	})
	g.Go(func() error {
		select {
		case <-a.startup.Done():
		case <-ctx.Done():
			a.startup.Stop()
		}
		return nil
	})
	if a.bot != nil {
		g.Go(func() error {
			// telegram errors are not fatal
			if err := a.bot.HandleUpdates(a.handleTelegramMessage, true); err != nil {
				logger.Errorf("telegram updates: %v", err)
			}
			return nil
		})
	}

	// canceling the context is the normal way to exit
	g.Go(func() error {
		<-ctx.Done()
		a.exit()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
