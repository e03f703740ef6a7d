package log

import (
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
)

// Verbose controls whether debug messages are being printed.
var Verbose bool

// IndentationLevel controls the amount of indentation of log messages.
var IndentationLevel = 0

// Spinner is shown while long-running external commands are in flight.
var Spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))

var errorOccured = false

var logger = &logrus.Logger{
	Out: os.Stderr,
	Formatter: &logrus.TextFormatter{
		DisableTimestamp: true,
	},
	Level: logrus.InfoLevel,
}

// Setup applies the Verbose flag to the underlying logger. Called once by the
// root command after flag parsing.
func Setup() {
	if Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
}

// ErrorOccured reports whether any errors have occured.
func ErrorOccured() bool {
	return errorOccured
}

func indent(format string) string {
	return strings.Repeat("  ", IndentationLevel) + strings.TrimSuffix(format, "\n")
}

// Log prints an indented and formatted message.
func Log(format string, a ...interface{}) {
	logger.Infof(indent(format), a...)
}

// Debug prints an indented and formatted debug message if verbose output is selected.
func Debug(format string, a ...interface{}) {
	logger.Debugf(indent(format), a...)
}

// Success prints an indented and formatted success message.
func Success(format string, a ...interface{}) {
	logger.Infof(indent("Success: "+format), a...)
}

// Warning prints an indented and formatted warning.
func Warning(format string, a ...interface{}) {
	logger.Warnf(indent(format), a...)
}

// Error prints an indented and formatted error message.
func Error(format string, a ...interface{}) {
	errorOccured = true
	logger.Errorf(indent(format), a...)
}

// Fatal prints an indented and formatted error message and terminates the program.
func Fatal(format string, a ...interface{}) {
	Error(format, a...)
	logger.Error("A fatal error occured. Exiting...")
	os.Exit(1)
}
