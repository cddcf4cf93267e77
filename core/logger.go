package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ProductionLogger is the default Logger implementation.
//
// Logging layers:
//   - JSON format in Kubernetes (detected via KUBERNETES_SERVICE_HOST) for
//     log aggregation, human-readable text for local development
//   - Level filtering via STOCKMIND_LOG_LEVEL (DEBUG/INFO/WARN/ERROR)
//   - Explicit format override via STOCKMIND_LOG_FORMAT (json/text)
//
// Safe for concurrent use.
type ProductionLogger struct {
	level       string
	debug       bool
	serviceName string
	format      string
	output      io.Writer
	mu          sync.Mutex
}

// NewProductionLogger creates a logger configured from the environment.
// Configuration priority:
//  1. Environment variables (STOCKMIND_LOG_LEVEL, STOCKMIND_DEBUG, STOCKMIND_LOG_FORMAT)
//  2. Auto-detection (Kubernetes environment)
//  3. Defaults (INFO, text)
func NewProductionLogger(serviceName string) *ProductionLogger {
	level := os.Getenv("STOCKMIND_LOG_LEVEL")
	if level == "" {
		level = "INFO"
	}

	debug := os.Getenv("STOCKMIND_DEBUG") == "true" ||
		strings.EqualFold(level, "DEBUG")

	format := "text"
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		format = "json"
	}
	if envFormat := os.Getenv("STOCKMIND_LOG_FORMAT"); envFormat != "" {
		format = envFormat
	}

	return &ProductionLogger{
		level:       strings.ToUpper(level),
		debug:       debug,
		serviceName: serviceName,
		format:      format,
		output:      os.Stdout,
	}
}

// SetOutput redirects log output, primarily for tests.
func (l *ProductionLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// Info logs informational messages
func (l *ProductionLogger) Info(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

// Warn logs warning messages
func (l *ProductionLogger) Warn(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

// Error logs error messages
func (l *ProductionLogger) Error(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// Debug logs debug messages (only when debug mode is enabled)
func (l *ProductionLogger) Debug(msg string, fields map[string]interface{}) {
	if !l.debug {
		return
	}
	l.log("DEBUG", msg, fields)
}

func (l *ProductionLogger) log(level, msg string, fields map[string]interface{}) {
	if !l.shouldLog(level) {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format(time.RFC3339)
	if l.format == "json" {
		l.logJSON(timestamp, level, msg, fields)
	} else {
		l.logText(timestamp, level, msg, fields)
	}
}

// shouldLog checks the level against the configured threshold
func (l *ProductionLogger) shouldLog(level string) bool {
	levels := map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}
	threshold, ok := levels[l.level]
	if !ok {
		threshold = 1
	}
	return levels[level] >= threshold
}

func (l *ProductionLogger) logJSON(timestamp, level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"timestamp": timestamp,
		"level":     level,
		"service":   l.serviceName,
		"message":   msg,
	}
	for k, v := range fields {
		// Avoid overwriting core fields
		if k != "timestamp" && k != "level" && k != "service" && k != "message" {
			entry[k] = v
		}
	}

	if data, err := json.Marshal(entry); err == nil {
		fmt.Fprintln(l.output, string(data))
	}
}

func (l *ProductionLogger) logText(timestamp, level, msg string, fields map[string]interface{}) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%s] %s: %s", timestamp, level, l.serviceName, msg))

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
		}
	}

	fmt.Fprintln(l.output, sb.String())
}
