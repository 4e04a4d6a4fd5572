package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

const tailSize = 200

type Logger struct {
	level string

	mu   sync.Mutex
	file *os.File
	tail []string
}

func New(level string) *Logger {
	return &Logger{
		level: level,
	}
}

// NewWithFile returns a logger that also appends every entry to the given
// file, so the /logs endpoint can serve history across restarts.
func NewWithFile(level, path string) (*Logger, error) {
	l := New(level)
	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level == "debug" || l.level == "info" {
		l.write("[INFO] "+msg, args...)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level == "debug" {
		l.write("[DEBUG] "+msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.write("[ERROR] "+msg, args...)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.write("[FATAL] "+msg, args...)
	os.Exit(1)
}

// Tail returns the most recent log entries, newest last.
func (l *Logger) Tail() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.tail))
	copy(out, l.tail)
	return out
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) write(msg string, args ...interface{}) {
	log.Printf(msg, args...)

	line := fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), fmt.Sprintf(msg, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tail = append(l.tail, line)
	if len(l.tail) > tailSize {
		l.tail = l.tail[len(l.tail)-tailSize:]
	}
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}
