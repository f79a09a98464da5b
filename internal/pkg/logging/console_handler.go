package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	grayColor      = color.New(color.FgHiBlack)
	underlineColor = color.New(color.Underline)

	levelColors = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgCyan),
		slog.LevelInfo:  color.New(color.FgGreen),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed, color.Bold),
	}
)

// ConsoleHandler is a human readable slog.Handler for development.
type ConsoleHandler struct {
	Output    io.Writer
	Level     slog.Leveler
	PkgLevels map[string]slog.Level

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	attrs = append(attrs, h.attrs...)

	if !h.pkgEnabled(attrs, r.Level) {
		return nil
	}

	levelColor, ok := levelColors[r.Level]
	if !ok {
		levelColor = grayColor
	}

	var b strings.Builder

	b.WriteString(grayColor.Sprint(r.Time.Format("15:04:05.000000")))
	b.WriteString(" " + levelColor.Sprint("["+r.Level.String()+"]"))
	b.WriteString(" " + r.Message)

	var prefix string
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		b.WriteString(" " + grayColor.Sprint("|"))
		h.renderAttrs(&b, prefix, attrs)
	}

	if r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fn := f.Function[strings.LastIndex(f.Function, "/")+1:]

		b.WriteString("\n-> " + grayColor.Sprint(fn+"()"))
		b.WriteString(" in " + underlineColor.Sprint(f.File+":"+strconv.Itoa(f.Line)))
	}

	_, err := fmt.Fprintln(h.Output, b.String())

	return err
}

// pkgEnabled applies the most specific FILTER entry matching the logger name.
func (h *ConsoleHandler) pkgEnabled(attrs []slog.Attr, level slog.Level) bool {
	if len(h.PkgLevels) == 0 {
		return true
	}

	var name string

	for _, attr := range attrs {
		if attr.Key == "logger" {
			name = attr.Value.String()
			break
		}
	}

	parts := strings.Split(name, ".")
	for i := len(parts); i >= 0; i-- {
		threshold, ok := h.PkgLevels[strings.Join(parts[:i], ".")]
		if ok {
			return level >= threshold
		}
	}

	return true
}

func (h *ConsoleHandler) renderAttrs(b *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			h.renderAttrs(b, prefix+attr.Key+".", attr.Value.Group())
			continue
		}

		b.WriteString(" " + prefix + attr.Key + "=" + grayColor.Sprint(attr.Value.String()))
	}
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups:    h.groups,
	}
}

func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     h.attrs,
		groups:    append(append([]string{}, h.groups...), name),
	}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
