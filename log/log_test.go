package log_test

import (
	"bytes"
	"testing"

	"github.com/journeymidnight/radosmirror/log"
	"github.com/stretchr/testify/assert"
)

type closeBuffer struct {
	*bytes.Buffer
}

func (b closeBuffer) Close() error {
	b.Buffer.Reset()
	return nil
}

func TestLogger(t *testing.T) {
	buf := closeBuffer{
		Buffer: &bytes.Buffer{},
	}
	l := log.NewLogger(buf, log.InfoLevel)

	l.Info("aaaaa")
	l.Warn("bbbbb")
	l.Error("ccccc")
	l.Println("hehe")
	s := buf.String()
	assert.Contains(t, s, "[INFO]")
	assert.Contains(t, s, "[WARN]")
	assert.Contains(t, s, "[ERROR]")
	assert.Contains(t, s, "aaaaa")
	assert.Contains(t, s, "bbbbb")
	assert.Contains(t, s, "ccccc")
	assert.Contains(t, s, "hehe")
	// per-image tag
	ll := l.NewWithTag("1/remote_image_id")
	ll.Info("haha")
	s = buf.String()
	assert.Contains(t, s, "haha")
	assert.Contains(t, s, "1/remote_image_id")
}

func TestLogLevel(t *testing.T) {
	errBuf := closeBuffer{
		Buffer: &bytes.Buffer{},
	}
	errLogger := log.NewLogger(errBuf, log.ErrorLevel)
	errLogger.Info("aaa")
	errLogger.Warn("bbb")
	errLogger.Error("ccc")
	errString := errBuf.String()
	assert.NotContains(t, errString, "[INFO]")
	assert.NotContains(t, errString, "aaa")
	assert.NotContains(t, errString, "[WARN]")
	assert.NotContains(t, errString, "bbb")
	assert.Contains(t, errString, "[ERROR]")
	assert.Contains(t, errString, "ccc")

	debugBuf := closeBuffer{
		Buffer: &bytes.Buffer{},
	}
	debugLogger := log.NewLogger(debugBuf, log.DebugLevel)
	debugLogger.Debug("ddd")
	debugLogger.Info("eee")
	debugString := debugBuf.String()
	assert.Contains(t, debugString, "[DEBUG]")
	assert.Contains(t, debugString, "ddd")
	assert.Contains(t, debugString, "eee")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.InfoLevel, log.ParseLevel("info"))
	assert.Equal(t, log.WarnLevel, log.ParseLevel("Warn"))
	assert.Equal(t, log.ErrorLevel, log.ParseLevel("error"))
	assert.Equal(t, log.DebugLevel, log.ParseLevel("debug"))
	assert.Equal(t, log.FatalLevel, log.ParseLevel("fatal"))
	// unknown levels fall back to info
	assert.Equal(t, log.InfoLevel, log.ParseLevel("hehe"))
}
