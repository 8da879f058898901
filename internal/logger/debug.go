package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogPathEnv names the environment variable that overrides the debug log location.
const LogPathEnv = "CQLTABLE_DEBUG_LOG_PATH"

var (
	debugEnabled bool
	debugMutex   sync.RWMutex

	// writeMutex serialises appends so lines from concurrent callers never interleave.
	writeMutex sync.Mutex
)

// SetDebugEnabled enables or disables debug logging
func SetDebugEnabled(enabled bool) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug logging is enabled
func IsDebugEnabled() bool {
	debugMutex.RLock()
	defer debugMutex.RUnlock()
	return debugEnabled
}

// LogPath returns the file debug lines are appended to.
func LogPath() string {
	if p := os.Getenv(LogPathEnv); p != "" {
		return p
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return filepath.Join(cwd, "cqltable_debug.log")
}

// DebugToFile logs debug messages to a file
func DebugToFile(context string, message string) {
	if !IsDebugEnabled() {
		return
	}

	writeMutex.Lock()
	defer writeMutex.Unlock()

	logFile, err := os.OpenFile(LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304: path comes from env or cwd
	if err != nil {
		return
	}
	defer logFile.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(logFile, "[%s] Context: %s | %s\n", timestamp, context, message)
	_ = logFile.Sync()
}

// DebugfToFile logs formatted debug messages to a file
func DebugfToFile(context string, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	DebugToFile(context, fmt.Sprintf(format, args...))
}
