package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/buzzer"
	"code.sztanpet.net/zvpsz/buzzer/internal/file"
	"code.sztanpet.net/zvpsz/buzzer/internal/gpio"
	"code.sztanpet.net/zvpsz/buzzer/internal/logwriter"
	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
	"code.sztanpet.net/zvpsz/buzzer/internal/storage"
	"code.sztanpet.net/zvpsz/buzzer/internal/telegram"
	"code.sztanpet.net/zvpsz/buzzer/internal/web"
)

func (a *app) handleSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		s := <-c
		// exit unconditionally on any signal
		logger.Warningf("Got signal: %s, exiting cleanly", s)
		a.exit()
	}()
}

func (a *app) setupLogging() {
	err := logwriter.Setup(a.bot, a.cfg.StatePath)
	if err != nil {
		panic("logwriter setup failed, impossible: " + err.Error())
	}
}

func (a *app) setupTelegram() {
	if a.cfg.TelegramToken == "" {
		return
	}

	bot, err := telegram.New(a.ctx, a.cfg.TelegramToken, a.cfg.TelegramChannelID)
	if err != nil {
		// not fatal
		logger.Errorf("telegram setup failed: %v", err)
		return
	}
	a.bot = bot
	_ = a.bot.Send("buzzerd start @ "+time.Now().Format(time.RFC3339), true)
}

func (a *app) setupStorage() {
	if a.cfg.DatabaseDSN == "" {
		if !file.Exists(a.cfg.SettingsPath) {
			logger.Infof("no settings at %v yet, using defaults", a.cfg.SettingsPath)
		}
		a.store = storage.NewFileStore(a.cfg.SettingsPath)
		return
	}

	st, err := storage.NewSQLStore(a.ctx, a.cfg.DatabaseDSN, "buzzer")
	if err != nil {
		logger.Criticalf("failed to initialize storage: %v", err)
		os.Exit(1)
	}
	if err := st.EnsureSchema(); err != nil {
		logger.Criticalf("failed to create settings table: %v", err)
		os.Exit(1)
	}
	a.store = st
}

func (a *app) setupBuzzer() {
	drv, err := gpio.New(a.cfg.Driver, a.cfg.PinMode)
	if err != nil {
		logger.Criticalf("gpio driver: %v", err)
		os.Exit(1)
	}
	a.startBuzzer(drv)
}

// startBuzzer never touches the pin itself, every init attempt is made by the
// background task.
func (a *app) startBuzzer(drv gpio.Driver, opts ...buzzer.InitOption) {
	a.drv = drv
	a.ctrl = buzzer.New(buzzer.PinConfig{
		Pin:        a.cfg.BuzzerPin,
		ActiveHigh: a.cfg.BuzzerActiveHigh,
	}, drv)

	// retries in the background, beeps when done
	a.startup = buzzer.StartInit(a.ctx, a.ctrl, a.store, opts...)
	a.queue = buzzer.NewQueue(a.ctrl, buzzer.DefaultQueueSize)
}

func (a *app) setupWeb() {
	a.web = web.New(a.ctrl, a.store, a.queue)
}

func (a *app) handleTelegramMessage(msg string) {
	cmd, args, ok := telegram.ParseCommand(msg)
	if !ok {
		return
	}

	switch cmd {
	case "beep":
		p := pattern.Pattern{buzzer.DefaultBeep}
		if args != "" {
			p = pattern.Decode(args)
		}
		if len(p) == 0 {
			_ = a.bot.Send("invalid pattern: "+args, true)
			return
		}
		if !a.queue.Request(p) {
			_ = a.bot.Send("beep queue full", true)
		}
	case "status":
		_ = a.bot.Send("buzzer is "+a.ctrl.State().String()+
			", startup beep: "+pattern.Encode(a.ctrl.Settings().StartupBeep), true)
	}
}
