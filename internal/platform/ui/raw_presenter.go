// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"trustlens/internal/core/domain"
)

// LogFormat es el formato de línea del modo raw.
type LogFormat string

const (
	LogFormatText LogFormat = "text" // logfmt
	LogFormatJSON LogFormat = "json"
)

// fields son los datos de un evento. En texto se emiten con claves ordenadas.
type fields map[string]any

// RawPresenter escribe un evento por línea, pensado para logs y pipes.
type RawPresenter struct {
	mu     sync.Mutex
	w      io.Writer
	format LogFormat
	now    func() time.Time
}

func NewRawPresenter(w io.Writer, format LogFormat) *RawPresenter {
	return &RawPresenter{w: w, format: format, now: time.Now}
}

func (r *RawPresenter) emit(level, event string, data fields) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC().Format(time.RFC3339)
	var line string
	if r.format == LogFormatJSON {
		line = jsonLine(ts, level, event, data)
	} else {
		line = textLine(ts, level, event, data)
	}
	_, _ = io.WriteString(r.w, line+"\n")
}

// textLine: "<ts> LEVEL event k=v ..." con claves ordenadas.
func textLine(ts, level, event string, data fields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", ts, level, event)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" " + k + "=" + logfmtValue(data[k]))
	}
	return b.String()
}

func jsonLine(ts, level, event string, data fields) string {
	entry := map[string]any{"timestamp": ts, "level": level, "message": event}
	if len(data) > 0 {
		plain := make(map[string]any, len(data))
		for k, v := range data {
			if d, ok := v.(time.Duration); ok {
				v = d.String()
			}
			plain[k] = v
		}
		entry["data"] = plain
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":%q}`, err.Error())
	}
	return string(raw)
}

func logfmtValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return strconv.Quote(val)
		}
		return val
	case time.Duration:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', 1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func (r *RawPresenter) Start(info RunInfo) {
	r.emit("INFO", "run_started", fields{
		"run":       info.RunID,
		"payload":   info.PayloadID,
		"analyzers": strings.Join(info.Analyzers, ","),
	})
}

func (r *RawPresenter) StartAnalyzer(name string) {
	r.emit("INFO", "analyzer_started", fields{"analyzer": name})
}

// FinishAnalyzer emite WARN para cualquier fallo, con su ErrorKind.
func (r *RawPresenter) FinishAnalyzer(name string, status Status, result domain.AnalyzerResult) {
	data := fields{
		"analyzer": name,
		"status":   status.String(),
		"duration": result.Elapsed,
		"attempts": result.Attempts,
	}
	if status == StatusSuccess || status == StatusCached {
		data["score"] = result.Score
		r.emit("INFO", "analyzer_completed", data)
		return
	}
	data["error_kind"] = result.ErrorKind.String()
	if result.Error != "" {
		data["error"] = result.Error
	}
	r.emit("WARN", "analyzer_completed", data)
}

func (r *RawPresenter) Info(msg string)    { r.emit("INFO", msg, nil) }
func (r *RawPresenter) Warning(msg string) { r.emit("WARN", msg, nil) }
func (r *RawPresenter) Error(msg string)   { r.emit("ERROR", msg, nil) }

func (r *RawPresenter) Finish(stats RunStats) {
	r.emit("INFO", "run_completed", fields{
		"run":             stats.RunID,
		"duration":        stats.Duration,
		"score":           formatScore(stats.Score),
		"level":           stats.Level.String(),
		"succeeded":       stats.Succeeded,
		"failed":          stats.Failed,
		"cached":          stats.Cached,
		"sufficient_data": stats.SufficientData,
	})
}

func (r *RawPresenter) Close() error { return nil }
