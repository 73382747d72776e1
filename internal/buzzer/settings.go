package buzzer

import (
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
	"code.sztanpet.net/zvpsz/buzzer/internal/storage"
)

// StartupBeepKey is the document key the startup pattern is persisted under.
const StartupBeepKey = "startup_beep"

// Settings are the persisted, user editable parts of the buzzer.
type Settings struct {
	StartupBeep pattern.Pattern
}

// three short beeps and a long one
func DefaultSettings() Settings {
	const ms = time.Millisecond
	return Settings{
		StartupBeep: pattern.Pattern{50 * ms, 50 * ms, 50 * ms, 50 * ms, 50 * ms, 50 * ms, 100 * ms},
	}
}

// SettingsFromDocument starts from the defaults and applies whatever keys doc has.
// Unknown keys are ignored, a nil doc yields the defaults.
func SettingsFromDocument(doc storage.Document) Settings {
	s := DefaultSettings()
	if v, ok := doc[StartupBeepKey]; ok {
		s.StartupBeep = pattern.Decode(v)
	}
	return s
}

func (s Settings) Document() storage.Document {
	return storage.Document{
		StartupBeepKey: pattern.Encode(s.StartupBeep),
	}
}

func (c *Controller) Settings() Settings {
	c.settingsMu.RLock()
	defer c.settingsMu.RUnlock()

	return Settings{
		StartupBeep: append(pattern.Pattern{}, c.settings.StartupBeep...),
	}
}

// LoadFromDocument replaces the current settings, keys missing from doc revert to their defaults.
func (c *Controller) LoadFromDocument(doc storage.Document) {
	s := SettingsFromDocument(doc)

	c.settingsMu.Lock()
	c.settings = s
	c.settingsMu.Unlock()
}

// LoadSettings reads the settings from st, falling back to the defaults on any error.
func (c *Controller) LoadSettings(st storage.Store) {
	doc, err := st.Load()
	if err != nil {
		logger.Debugf("loading settings failed, using defaults: %v", err)
		doc = nil
	}
	c.LoadFromDocument(doc)
}

func (c *Controller) SaveSettings(st storage.Store) error {
	return st.Save(c.Settings().Document())
}
