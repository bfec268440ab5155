package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/teemow/discal/internal/logging"
)

var loggerMu sync.Mutex

// InstallLogger routes discordgo's package-level log output to logger.
func InstallLogger(logger logging.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	discordgo.Logger = func(level, _ int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch level {
		case discordgo.LogError:
			logger.Error(msg, "source", "discordgo")
		case discordgo.LogWarning:
			logger.Warn(msg, "source", "discordgo")
		case discordgo.LogInformational:
			logger.Info(msg, "source", "discordgo")
		default:
			logger.Debug(msg, "source", "discordgo")
		}
	}
}
