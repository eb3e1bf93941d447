package router

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/supportbot/core/logger"
	tghelpers "github.com/m3rciful/supportbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// summary describes how one handler invocation ended. Empty status and
// outcome are derived from err.
type summary struct {
	handler string
	start   time.Time
	status  string
	outcome string
	extras  []slog.Attr
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, status, outcome string, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, status, outcome, err, extras...)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status, outcome string, err error, extras ...slog.Attr) {
	s := summary{handler: handlerName, start: start, status: status, outcome: outcome, extras: extras}
	s.log(c, err)
}

func (s summary) log(c tele.Context, err error) {
	ctx := tghelpers.WithHandler(c, s.handler)

	result := "ok"
	level := slog.LevelInfo
	if err != nil {
		result = "fail"
		level = slog.LevelWarn
	}
	if s.status == "" {
		s.status = result
	}
	if s.outcome == "" {
		s.outcome = result
	}

	attrs := make([]slog.Attr, 0, 7+len(s.extras))
	attrs = append(attrs,
		slog.String("status", s.status),
		slog.String("handler", s.handler),
		slog.String("outcome", s.outcome),
		slog.Duration("duration", logger.Took(s.start)),
	)
	if err != nil {
		attrs = append(attrs,
			logger.Err(err),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	attrs = append(attrs, s.extras...)
	logger.LogEvent(ctx, logger.Component(logger.ComponentTG), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// deriveErrorCode names an error for log aggregation. Bot API rejections map
// to TG_<status>, flood control to RATE_LIMITED, errors exposing Code() to
// that code; anything else to its type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return "RATE_LIMITED"
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return fmt.Sprintf("TG_%d", apiErr.Code)
	}

	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(t.Name())
}
