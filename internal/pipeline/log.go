package pipeline

import (
	"log"
	"os"
)

// LogLevelEnv names the environment variable that enables debug logging.
const LogLevelEnv = "HUECYCLE_LOG_LEVEL"

func debugf(format string, args ...interface{}) {
	if os.Getenv(LogLevelEnv) == "debug" {
		log.Printf(format, args...)
	}
}
