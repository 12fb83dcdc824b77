package util

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Debug is the highest DPrintf level that is emitted.
var Debug uint64 = 0

var logger = logrus.New()

// Logger returns the logger DPrintf writes to, for callers that want
// structured fields.
func Logger() *logrus.Logger {
	return logger
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		logger.WithField("debug", level).Debugf(format, a...)
	}
}

// SetLevel sets the DPrintf threshold. Any non-zero level also lowers the
// logrus level so the messages are not filtered a second time.
func SetLevel(level uint64) {
	Debug = level
	if level > 0 {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetFormatter selects "json" or "text" (the default) log output.
func SetFormatter(format string) {
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

// SumOverflows reports whether n + m wraps around 2^64.
func SumOverflows(n uint64, m uint64) bool {
	return n+m < n
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
