package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"jewelry-repricer/internal/config"
)

type LoggerService interface {
	Log(value string)
	LogError(value string, err error)
	LogWarning(value string)
	LogSuccess(value string)
}

// Logger writes JSON lines to the console and, when a Telegram bot is configured,
// forwards warnings, errors and successes to the chat.
type Logger struct {
	console  zerolog.Logger
	telegram *telegramNotifier
}

func NewLogger(tgCfg config.TelegramBotConfig, logCfg config.LogConfig, httpClient *resty.Client) LoggerService {
	return newLogger(os.Stderr, tgCfg, logCfg, httpClient)
}

func newLogger(out io.Writer, tgCfg config.TelegramBotConfig, logCfg config.LogConfig, httpClient *resty.Client) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(logCfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	l := &Logger{
		console: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
	if tgCfg.ChatId == "" || tgCfg.Token == "" {
		l.console.Warn().Msg("telegram credentials missing, notifications disabled")
		return l
	}
	l.telegram = newTelegramNotifier(tgCfg, httpClient)
	return l
}

func (l *Logger) Log(value string) {
	if l == nil {
		return
	}
	l.console.Info().Msg(clean(value))
}

func (l *Logger) LogError(value string, err error) {
	if l == nil {
		return
	}
	l.console.Error().Err(err).Msg(clean(value))
	if err != nil {
		value = fmt.Sprintf("%s: %v", clean(value), err)
	}
	l.notify(iconError, "ERROR", value)
}

func (l *Logger) LogWarning(value string) {
	if l == nil {
		return
	}
	l.console.Warn().Msg(clean(value))
	l.notify(iconWarning, "WARNING", value)
}

func (l *Logger) LogSuccess(value string) {
	if l == nil {
		return
	}
	l.console.Info().Str("status", "success").Msg(clean(value))
	l.notify(iconSuccess, "SUCCESS", value)
}

func (l *Logger) notify(icon, level, value string) {
	if l.telegram == nil {
		return
	}
	if err := l.telegram.send(formatMessage(icon, level, value)); err != nil {
		l.console.Debug().Err(err).Msg("telegram notification failed")
	}
}

func clean(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "-"
	}
	return v
}

func formatMessage(icon, level, value string) string {
	return fmt.Sprintf("%s %s: %s", icon, level, clean(value))
}
