package config

import (
	"fmt"
	"os"
	"strconv"

	"code.sztanpet.net/zvpsz/buzzer/internal/gpio"
	"github.com/juju/loggo"
)

var logger = loggo.GetLogger("buzzerd.config")

type Config struct {
	BuzzerPin         int
	BuzzerActiveHigh  bool
	PinMode           gpio.Mode
	Driver            string
	SettingsPath      string
	DatabaseDSN       string
	HTTPAddr          string
	StatePath         string
	TelegramToken     string
	TelegramChannelID int64
	LogLevel          string
}

// Get reads the config from the environment, exits on invalid values.
func Get() *Config {
	cfg, err := parse(os.Getenv)
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	return cfg
}

func parse(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BuzzerPin:        32,
		BuzzerActiveHigh: true,
		PinMode:          gpio.Board,
		Driver:           "periph",
		SettingsPath:     "./data/buzzer.json",
		HTTPAddr:         ":8080",
		StatePath:        ".",
		LogLevel:         "<root>=INFO",
	}

	var err error
	if v := getenv("BUZZER_PIN"); v != "" {
		// -1 disables the buzzer
		cfg.BuzzerPin, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed parsing BUZZER_PIN env var: %v", err)
		}
	}

	if v := getenv("BUZZER_ACTIVE_HIGH"); v != "" {
		cfg.BuzzerActiveHigh, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("failed parsing BUZZER_ACTIVE_HIGH env var: %v", err)
		}
	}

	if v := getenv("BUZZER_PIN_MODE"); v != "" {
		cfg.PinMode, err = gpio.ParseMode(v)
		if err != nil {
			return nil, fmt.Errorf("failed parsing BUZZER_PIN_MODE env var: %v", err)
		}
	}

	if v := getenv("BUZZER_DRIVER"); v != "" {
		cfg.Driver = v
	}
	if v := getenv("SETTINGS_PATH"); v != "" {
		cfg.SettingsPath = v
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.DatabaseDSN = getenv("DATABASE_DSN")

	// telegram is optional, but both or neither
	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")
	cid := getenv("TELEGRAM_CHANNELID")
	if (cfg.TelegramToken == "") != (cid == "") {
		return nil, fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHANNELID env vars have to be set together")
	}
	if cid != "" {
		cfg.TelegramChannelID, err = strconv.ParseInt(cid, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed parsing TELEGRAM_CHANNELID env var: %v", err)
		}
	}

	return cfg, nil
}
