package domain

import (
	"io"
	"log/slog"
	"time"
)

var baseTestDate = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
