package tcp

import "github.com/sirupsen/logrus"

// nopLogger is used whenever a Connection is built without an
// explicit *logrus.Entry, so the synchronous core never has to nil
// check before logging and tests never need to wire one up.
var nopLogger = logrus.NewEntry(func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}())

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
