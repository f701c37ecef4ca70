package log

import (
	"github.com/sirupsen/logrus"
	"io"
)

type Logger interface {
	Trace(message string, opts ...interface{})
	Debug(message string, opts ...interface{})
	Info(message string, opts ...interface{})
	Warning(message string, opts ...interface{})
	Error(message string, opts ...interface{})
	Fatal(message string, opts ...interface{})
	Child(opts ...interface{}) Logger
}

type childLogger struct {
	parent Logger
	fields []interface{}
}

func (c *childLogger) Trace(message string, opts ...interface{}) {
	c.parent.Trace(message, append(opts, c.fields...)...)
}

func (c *childLogger) Debug(message string, opts ...interface{}) {
	c.parent.Debug(message, append(opts, c.fields...)...)
}

func (c *childLogger) Info(message string, opts ...interface{}) {
	c.parent.Info(message, append(opts, c.fields...)...)
}

func (c *childLogger) Warning(message string, opts ...interface{}) {
	c.parent.Warning(message, append(opts, c.fields...)...)
}

func (c *childLogger) Error(message string, opts ...interface{}) {
	c.parent.Error(message, append(opts, c.fields...)...)
}

func (c *childLogger) Fatal(message string, opts ...interface{}) {
	c.parent.Fatal(message, append(opts, c.fields...)...)
}

func (c *childLogger) Child(opts ...interface{}) Logger {
	return &childLogger{
		parent: c,
		fields: opts,
	}
}

type rootLogger struct {
	out *logrus.Logger
}

func (r *rootLogger) Trace(message string, opts ...interface{}) {
	r.log(logrus.TraceLevel, message, opts)
}

func (r *rootLogger) Debug(message string, opts ...interface{}) {
	r.log(logrus.DebugLevel, message, opts)
}

func (r *rootLogger) Info(message string, opts ...interface{}) {
	r.log(logrus.InfoLevel, message, opts)
}

func (r *rootLogger) Warning(message string, opts ...interface{}) {
	r.log(logrus.WarnLevel, message, opts)
}

func (r *rootLogger) Error(message string, opts ...interface{}) {
	r.log(logrus.ErrorLevel, message, opts)
}

func (r *rootLogger) Fatal(message string, opts ...interface{}) {
	r.log(logrus.FatalLevel, message, opts)
}

func (r *rootLogger) Child(opts ...interface{}) Logger {
	return &childLogger{
		parent: r,
		fields: opts,
	}
}

func (r *rootLogger) log(level logrus.Level, message string, opts []interface{}) {
	if len(opts)%2 != 0 {
		panic("mismatched log key/value pairs")
	}

	fields := make(logrus.Fields, len(opts)/2)
	for i := 0; i < len(opts); i += 2 {
		key, ok := opts[i].(string)
		if !ok {
			panic("log keys must be strings")
		}
		fields[key] = opts[i+1]
	}

	r.out.WithFields(fields).Log(level, message)
	if level == logrus.FatalLevel {
		r.out.Exit(1)
	}
}

var root = &rootLogger{
	out: logrus.StandardLogger(),
}

// SetLevel parses a logrus level name ("debug", "info", ...) and applies it
// to every module logger.
func SetLevel(name string) error {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	root.out.SetLevel(level)
	return nil
}

func SetOutput(w io.Writer) {
	root.out.SetOutput(w)
}

func ModuleLogger(name string) Logger {
	return root.Child("module", name)
}
