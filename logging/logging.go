// Package logging wires the stdlib logger used throughout the wrapper into
// a single hclog sink. Wrapper packages log with level-prefixed messages
// ("[TRACE] ...", "[WARN] ..."); the sink infers the level from the prefix
// and filters by the FDW_LOG environment variable.
package logging

import (
	"log"
	"os"

	"github.com/hashicorp/go-hclog"
)

const logLevelEnvVar = "FDW_LOG"

// Init installs the log sink. Call once from the host integration's init
// path before the first wrapper callback.
func Init(name string) {
	level := hclog.LevelFromString(os.Getenv(logLevelEnvVar))
	if level == hclog.NoLevel {
		level = hclog.Warn
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05.000 UTC",
	})
	log.SetOutput(logger.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true}))
	log.SetPrefix("")
	log.SetFlags(0)
}
