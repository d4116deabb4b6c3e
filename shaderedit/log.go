package shaderedit

import (
	"fmt"

	"github.com/golang/glog"
)

// Logging convention in the `shaderedit` package:
// Info:
//     abnormal events. This level should be silent on normal operation,
//     with the exception of one time session setup. This includes:
//     - auth and transport failures
//     - contract violations that abort a session
// V(1):
//     key session events with ids that can be used to filter
//     - snapshot received, stage state transitions, ignored commands
// V(2):
//     per message traces (every command, every frame)

type LogFunction func(string, ...any)

func LogFn(level glog.Level, tag string) LogFunction {
	return func(format string, a ...any) {
		if glog.V(level) {
			m := fmt.Sprintf(format, a...)
			glog.InfoDepth(1, fmt.Sprintf("[%s]%s", tag, m))
		}
	}
}

func SubLogFn(log LogFunction, tag string) LogFunction {
	return func(format string, a ...any) {
		m := fmt.Sprintf(format, a...)
		log("%s: %s", tag, m)
	}
}
