package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

// jsonKeys maps slog's built-in keys onto the short names used in log files.
var jsonKeys = map[string]string{
	slog.TimeKey:    "ts",
	slog.LevelKey:   "level",
	slog.MessageKey: "msg",
	slog.SourceKey:  "src",
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return attr
	}
	key, builtin := jsonKeys[attr.Key]
	if !builtin {
		return attr
	}
	attr.Key = key
	switch v := attr.Value.Any().(type) {
	case slog.Level:
		attr.Value = slog.StringValue(strings.ToLower(v.String()))
	case *slog.Source:
		if v != nil {
			attr.Value = slog.StringValue(filepath.Base(v.File) + ":" + strconv.Itoa(v.Line))
		}
	}
	if attr.Value.Kind() == slog.KindTime {
		attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(jsonTimestampLayout))
	}
	return attr
}
