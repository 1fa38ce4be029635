package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramParams defines telegram notifier settings
type TelegramParams struct {
	Token   string
	ChatID  string // numeric chat id or @channel username
	APIURL  string // bot api base, default https://api.telegram.org
	Timeout time.Duration
}

// Telegram sends notifications to a chat through the Bot API.
// The bot is initialized on the first message, so startup doesn't depend on telegram availability.
type Telegram struct {
	TelegramParams
	client *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegram makes a telegram notifier
func NewTelegram(params TelegramParams) *Telegram {
	if params.Timeout <= 0 {
		params.Timeout = 10 * time.Second
	}
	return &Telegram{TelegramParams: params, client: &http.Client{Timeout: params.Timeout}}
}

// Notify sends msg as plain text to the configured chat
func (t *Telegram) Notify(ctx context.Context, msg string) error {
	m, err := t.message(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	client := ctxClient{ctx: ctx, client: t.client}
	if t.bot == nil {
		bot, err := tgbotapi.NewBotAPIWithClient(t.Token, t.endpoint(), client)
		if err != nil {
			return fmt.Errorf("init telegram bot: %w", redactToken(err, t.Token))
		}
		t.bot = bot
	}
	t.bot.Client = client

	if _, err := t.bot.Send(m); err != nil {
		return fmt.Errorf("send telegram message: %w", redactToken(err, t.Token))
	}
	return nil
}

func (t *Telegram) message(text string) (tgbotapi.MessageConfig, error) {
	var m tgbotapi.MessageConfig
	switch {
	case strings.HasPrefix(t.ChatID, "@"):
		m = tgbotapi.NewMessageToChannel(t.ChatID, text)
	default:
		chatID, err := strconv.ParseInt(strings.TrimSpace(t.ChatID), 10, 64)
		if err != nil {
			return m, fmt.Errorf("invalid telegram chat id %q", t.ChatID)
		}
		m = tgbotapi.NewMessage(chatID, text)
	}
	m.DisableWebPagePreview = true
	return m, nil
}

// endpoint returns the bot api url template with token and method placeholders
func (t *Telegram) endpoint() string {
	if t.APIURL == "" {
		return tgbotapi.APIEndpoint
	}
	return strings.TrimRight(t.APIURL, "/") + "/bot%s/%s"
}

// ctxClient binds requests made by the bot library to the caller's context
type ctxClient struct {
	ctx    context.Context
	client *http.Client
}

func (c ctxClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// redactToken removes the bot token from errors, request urls contain it
func redactToken(err error, token string) error {
	if token == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "****"))
}
