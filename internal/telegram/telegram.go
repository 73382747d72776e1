package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"golang.org/x/time/rate"
)

// MaxSendDurr configures the limiter to send at most 1 message per MaxSendDurr
var MaxSendDurr = 500 * time.Millisecond

const maxMessageSize = 4096 // https://github.com/yagop/node-telegram-bot-api/issues/165

type Bot struct {
	ctx       context.Context
	channelID int64
	api       *tgbotapi.BotAPI
	limiter   *rate.Limiter
}

func New(ctx context.Context, token string, channelID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	t := &Bot{
		ctx:       ctx,
		channelID: channelID,
		api:       api,
		// limit message spam to once every MaxSendDurr
		limiter: rate.NewLimiter(rate.Every(MaxSendDurr), 1),
	}
	return t, nil
}

// Send sends a message to the channel, optionally sending notifications depending on disableNotification
// long messages are split into numbered parts, internally ratelimited to once every MaxSendDurr
func (t *Bot) Send(txt string, disableNotification bool) error {
	for _, part := range split(txt, maxMessageSize) {
		if err := t.limiter.Wait(t.ctx); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(t.channelID, part)
		msg.DisableNotification = disableNotification
		if _, err := t.api.Send(msg); err != nil {
			return err
		}
	}

	return nil
}

// split cuts txt into pieces of at most max bytes, each suffixed with " (n)" when cut.
// Cuts never land inside a multi-byte rune.
func split(txt string, max int) []string {
	if len(txt) <= max {
		return []string{txt}
	}

	const postfixLength = 8 // " (" + up to 5 digits + ")"
	size := max - postfixLength

	var parts []string
	for i := 1; len(txt) > 0; i++ {
		end := size
		if len(txt) <= end {
			end = len(txt)
		} else {
			for end > 0 && !utf8.RuneStart(txt[end]) {
				end--
			}
			if end == 0 {
				end = size
			}
		}
		parts = append(parts, txt[:end]+" ("+strconv.Itoa(i)+")")
		txt = txt[end:]
	}
	return parts
}

// HandleUpdates receives bot events, and calls callback with received messages
// old bot events are replayed on calling the method, except when onlyNewUpdates is true
func (t *Bot) HandleUpdates(callback func(msg string), onlyNewUpdates bool) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := t.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	if onlyNewUpdates {
		updates.Clear()
	}

	for {
		select {
		case <-t.ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}

			if u.Message != nil {
				callback(u.Message.Text)
			}
			if u.EditedMessage != nil {
				callback(u.EditedMessage.Text)
			}
			if u.ChannelPost != nil {
				callback(u.ChannelPost.Text)
			}
			if u.EditedChannelPost != nil {
				callback(u.EditedChannelPost.Text)
			}
		}
	}
}

// ParseCommand splits "/cmd@bot rest of the line" into "cmd" and "rest of the line".
func ParseCommand(txt string) (cmd, args string, ok bool) {
	txt = strings.TrimSpace(txt)
	if !strings.HasPrefix(txt, "/") {
		return "", "", false
	}

	cmd, args = txt[1:], ""
	if i := strings.IndexAny(cmd, " \t\n"); i != -1 {
		cmd, args = cmd[:i], strings.TrimSpace(cmd[i:])
	}
	if i := strings.IndexByte(cmd, '@'); i != -1 {
		cmd = cmd[:i]
	}

	return strings.ToLower(cmd), args, cmd != ""
}
