package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset   = "\x1b[0m"
	ansiDim     = "\x1b[2m"
	ansiBright  = "\x1b[1m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

// prettyHandler renders logfmt-style lines for local development. Production
// deployments keep the JSON handler.
type prettyHandler struct {
	w      io.Writer
	opts   slog.HandlerOptions
	attrs  []slog.Attr
	groups []string
	color  bool
	mu     *sync.Mutex
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, color bool) slog.Handler {
	h := &prettyHandler{
		w:     w,
		color: color,
		mu:    &sync.Mutex{},
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	line := make([]byte, 0, 256)
	line = h.pair(line, "ts", h.dim(ts.Format("15:04:05.000")))
	line = h.pair(line, "lvl", h.levelTag(r.Level))
	line = h.pair(line, "msg", h.bold(r.Message))

	if h.opts.AddSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		if frame, _ := frames.Next(); frame.File != "" {
			src := filepath.Base(frame.File) + ":" + strconv.Itoa(frame.Line)
			line = h.pair(line, "src", h.dim(src))
		}
	}

	for _, a := range h.attrs {
		line = h.appendAttr(line, a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		line = h.appendAttr(line, a, "")
		return true
	})

	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

// pair writes " key=value", skipping the leading space on an empty line.
func (h *prettyHandler) pair(line []byte, key, value string) []byte {
	if len(line) > 0 {
		line = append(line, ' ')
	}
	line = append(line, key...)
	line = append(line, '=')
	return append(line, value...)
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}
	cp := *h
	cp.groups = append(append([]string{}, h.groups...), name)
	return &cp
}

func (h *prettyHandler) appendAttr(line []byte, a slog.Attr, parent string) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return line
	}

	key := strings.TrimSpace(a.Key)
	if key == "" {
		return line
	}
	if parent != "" {
		key = parent + "." + key
	}
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}

	// Groups flatten to dotted keys.
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			line = h.appendAttr(line, ga, key)
		}
		return line
	}

	return h.pair(line, key, h.prettyValue(key, a.Value))
}

// prettyValue colorizes a few well-known request keys; everything else is
// rendered as quoted-if-needed logfmt.
func (h *prettyHandler) prettyValue(key string, v slog.Value) string {
	switch key {
	case "method":
		m := strings.ToUpper(strings.TrimSpace(v.String()))
		return h.paint(m, methodColor(m))
	case "path":
		return h.paint(strings.TrimSpace(v.String()), ansiCyan)
	case "status":
		if n, ok := valueToInt64(v); ok {
			return h.paint(strconv.FormatInt(n, 10), statusColor(int(n)))
		}
	}
	return quoteIfNeeded(valueToString(v))
}

func methodColor(m string) string {
	switch m {
	case "GET":
		return ansiGreen
	case "POST", "PUT", "PATCH":
		return ansiYellow
	case "DELETE":
		return ansiRed
	}
	return ""
}

func statusColor(code int) string {
	switch {
	case code >= 500:
		return ansiRed
	case code >= 400:
		return ansiYellow
	}
	return ansiGreen
}

func (h *prettyHandler) levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint("[ERROR]", ansiRed)
	case level >= slog.LevelWarn:
		return h.paint("[WARN]", ansiYellow)
	case level < slog.LevelInfo:
		return h.paint("[DEBUG]", ansiMagenta)
	}
	return h.paint("[INFO]", ansiBlue)
}

func (h *prettyHandler) paint(s, color string) string {
	if !h.color || color == "" {
		return s
	}
	return color + s + ansiReset
}

func (h *prettyHandler) dim(s string) string  { return h.paint(s, ansiDim) }
func (h *prettyHandler) bold(s string) string { return h.paint(s, ansiBright) }

func valueToInt64(v slog.Value) (int64, bool) {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		return int64(v.Uint64()), true
	default:
		return 0, false
	}
}

func valueToString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return fmt.Sprint(v.Any())
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
