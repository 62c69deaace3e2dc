// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides printf-style helpers on top of logrus.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var logger = newLogger(os.Stderr)

// exitFunc is swapped out in tests so Fatal does not terminate the test binary.
var exitFunc = os.Exit

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&prefixFormatter{colored: isTerminal(out)})
	return l
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// prefixFormatter renders entries as "LEVEL: message", without timestamps.
type prefixFormatter struct {
	colored bool
}

var levelColors = map[logrus.Level]*color.Color{
	logrus.DebugLevel: color.New(color.FgHiBlack),
	logrus.InfoLevel:  color.New(color.FgGreen),
	logrus.WarnLevel:  color.New(color.FgYellow),
	logrus.ErrorLevel: color.New(color.FgRed),
	logrus.FatalLevel: color.New(color.FgRed, color.Bold),
}

func (f *prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer
	prefix := fmt.Sprintf("%-5s", levelName(entry.Level))
	if c, ok := levelColors[entry.Level]; ok && f.colored {
		c.EnableColor()
		prefix = c.Sprint(prefix)
	}
	buf.WriteString(prefix)
	buf.WriteString(": ")
	buf.WriteString(entry.Message)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func levelName(l logrus.Level) string {
	switch l {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.PanicLevel, logrus.FatalLevel:
		return "FATAL"
	default:
		b, _ := l.MarshalText()
		return string(bytes.ToUpper(b))
	}
}

// SetOutput redirects log output, e.g. to a buffer in tests.
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
	logger.SetFormatter(&prefixFormatter{colored: isTerminal(out)})
}

// SetVerbose enables debug messages.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.InfoLevel)
}

// Debug logs a message that is only shown in verbose mode.
func Debug(format string, args ...any) {
	logger.Debugf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	logger.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}

// Error logs an error without exiting.
func Error(format string, args ...any) {
	logger.Errorf(format, args...)
}

// Fatal logs an error and exits with status 1.
func Fatal(format string, args ...any) {
	logger.Logf(logrus.FatalLevel, format, args...)
	exitFunc(1)
}
