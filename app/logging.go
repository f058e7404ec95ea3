package app

import (
	"time"

	"github.com/iov-one/dao"
)

// logDuration writes information about the time and result to the logger.
// Errors are logged at error level, low priority calls at debug level and
// everything else at info level.
func logDuration(ctx dao.Context, start time.Time, msg string, err error, lowPrio bool) {
	delta := time.Since(start)
	logger := dao.GetLogger(ctx).With("duration", delta/time.Microsecond)

	if err != nil {
		logger = logger.With("err", err)
	}

	switch {
	case err != nil:
		logger.Error(msg)
	case lowPrio:
		logger.Debug(msg)
	default:
		logger.Info(msg)
	}
}
