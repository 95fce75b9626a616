package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
)

type Level int

const (
	FatalLevel Level = 0 // Errors must be properly handled
	ErrorLevel Level = 1 // Errors should be handled, maybe not too urgent
	WarnLevel  Level = 2 // Errors could be ignored; messages might need noticed
	InfoLevel  Level = 3 // Informational messages
	DebugLevel Level = 4 // Debug messages
)

var levelTags = map[Level]string{
	FatalLevel: "[FATAL]",
	ErrorLevel: "[ERROR]",
	WarnLevel:  "[WARN]",
	InfoLevel:  "[INFO]",
	DebugLevel: "[DEBUG]",
}

func ParseLevel(levelString string) Level {
	switch strings.ToLower(levelString) {
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warn":
		return WarnLevel
	case "info":
		return InfoLevel
	case "debug":
		return DebugLevel
	default:
		return InfoLevel
	}
}

type Logger struct {
	filePath string // the underlying log file path
	out      io.WriteCloser
	level    Level
	logger   *log.Logger
	tag      string // mirrored image this logger speaks for, if any
}

var logFlags = log.Ldate | log.Ltime | log.Lmicroseconds

func NewFileLogger(path string, logLevel Level) Logger {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		panic("Failed to open log file " + path)
	}
	l := NewLogger(f, logLevel)
	l.filePath = path
	return l
}

func NewLogger(out io.WriteCloser, logLevel Level) Logger {
	return Logger{
		out:    out,
		level:  logLevel,
		logger: log.New(out, "", logFlags),
	}
}

func (l Logger) GetLogger() *log.Logger {
	return l.logger
}

// NewWithTag returns a logger whose lines carry an extra tag, typically
// "pool/global_image_id" for per-image messages
func (l Logger) NewWithTag(tag string) Logger {
	withTag := l
	withTag.tag = tag
	return withTag
}

func getCaller(skipCallDepth int) string {
	_, fullPath, line, ok := runtime.Caller(skipCallDepth)
	if !ok {
		return ""
	}
	fileParts := strings.Split(fullPath, "/")
	file := fileParts[len(fileParts)-2] + "/" + fileParts[len(fileParts)-1]
	return fmt.Sprintf("%s:%d", file, line)
}

func (l Logger) log(level Level, args []interface{}) {
	if l.level < level {
		return
	}
	prefix := make([]interface{}, 0, 3)
	prefix = append(prefix, getCaller(3), levelTags[level])
	if len(l.tag) > 0 {
		prefix = append(prefix, l.tag)
	}
	l.logger.Println(append(prefix, args...)...)
}

func (l Logger) Fatal(args ...interface{}) {
	l.log(FatalLevel, args)
}

func (l Logger) Error(args ...interface{}) {
	l.log(ErrorLevel, args)
}

func (l Logger) Warn(args ...interface{}) {
	l.log(WarnLevel, args)
}

func (l Logger) Info(args ...interface{}) {
	l.log(InfoLevel, args)
}

func (l Logger) Debug(args ...interface{}) {
	l.log(DebugLevel, args)
}

// Write a new line with args, bypassing level filtering and prefixes
func (l Logger) Println(args ...interface{}) {
	_, _ = l.out.Write([]byte(fmt.Sprintln(args...)))
}

func (l Logger) Close() error {
	return l.out.Close()
}

// ReopenLogFile reopens the underlying file, for log rotation on SIGHUP.
// No-op for loggers not backed by a file
func (l *Logger) ReopenLogFile() {
	if len(l.filePath) == 0 {
		return
	}
	newFile, err := os.OpenFile(l.filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintln("ReopenLogFile:", l.filePath, err))
	}
	oldFile := l.out
	l.out = newFile
	l.logger = log.New(newFile, "", logFlags)
	_ = oldFile.Close()
}
