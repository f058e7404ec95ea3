package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// stackTracer is implemented by errors created using pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found while unwrapping given
// error, or nil.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}

// callerFrames drops the frames that belong to the wrapping helpers of this
// package so that the trace starts where the error was created.
func callerFrames(st errors.StackTrace) errors.StackTrace {
	for i, f := range st {
		path := fmt.Sprintf("%+s", f)
		if strings.HasSuffix(path, "/errors/errors.go") {
			continue
		}
		return st[i:]
	}
	return nil
}

// Format implements fmt.Formatter.
//
// %v prints the message followed by the file and line where the error was
// wrapped for the first time. %+v adds the full stack trace.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		frames := callerFrames(stackTrace(e))
		if s.Flag('+') {
			io.WriteString(s, e.Error())
			for _, f := range frames {
				fmt.Fprintf(s, "\n%+v", f)
			}
			return
		}
		io.WriteString(s, e.Error())
		if len(frames) != 0 {
			fmt.Fprintf(s, " [%s:%d]", frames[0], frames[0])
		}
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
