package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Package logging writes one JSON object per line, the format shared by startup,
// migration, tracing and access logs.

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects event logs. Intended for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Event writes data as a single JSON line. "ts" is set in loc (UTC when nil) and
// "level" defaults to "error" when status is "error", "info" otherwise.
func Event(loc *time.Location, data map[string]any) {
	if loc == nil {
		loc = time.UTC
	}
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal log event: %v", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	_, _ = out.Write(append(b, '\n'))
}
