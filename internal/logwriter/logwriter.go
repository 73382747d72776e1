package logwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sztanpet.net/zvpsz/buzzer/internal/file"
	"code.sztanpet.net/zvpsz/buzzer/internal/telegram"
	"github.com/juju/loggo"
)

type writer struct {
	bot  *telegram.Bot
	path string
}

// Setup replaces the default loggo writer with one that appends to
// <statePath>/<binary name>.log and forwards warnings to telegram when bot is not nil.
func Setup(bot *telegram.Bot, statePath string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	_, err = loggo.RemoveWriter("default")
	if err != nil {
		return err
	}

	return loggo.RegisterWriter("default", &writer{
		bot:  bot,
		path: filepath.Join(statePath, filepath.Base(exe)+".log"),
	})
}

func (w *writer) Write(e loggo.Entry) {
	line := formatEntry(e)

	l := fmt.Sprintf("%v%v:%v %v\n",
		e.Timestamp.Format("[2006-01-02 15:04:05] "),
		trimPath(e.Filename), e.Line,
		line,
	)
	if err := file.Append(w.path, []byte(l)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write log file: %v\n%v", err, l)
	}

	if w.bot == nil || e.Level < loggo.WARNING {
		return
	}
	go func() {
		if err := w.bot.Send(line, false); err != nil {
			fmt.Fprintf(os.Stderr, "%v bot send error: %v\n", e.Timestamp.Format("[2006-01-02 15:04:05]"), err)
		}
	}()
}

// trimPath shortens source paths to be relative to the repository
func trimPath(fp string) string {
	const root = "zvpsz/buzzer/"
	if ix := strings.Index(fp, root); ix != -1 {
		return fp[ix+len(root):]
	}
	return fp
}

func formatEntry(e loggo.Entry) string {
	// who can remember the order of the levels right?
	// indicate the level like T1 for TRACE D2 for debug, etc
	return fmt.Sprintf(
		"[%v%v|%v:%v:%v] %v",
		string(e.Level.String()[0]),
		int(e.Level),
		e.Module,
		filepath.Base(e.Filename),
		e.Line,
		e.Message,
	)
}
