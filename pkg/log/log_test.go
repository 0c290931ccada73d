package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.InfoLevel, ParseLevel("info"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, logrus.DebugLevel, ParseLevel(""))
	assert.Equal(t, logrus.DebugLevel, ParseLevel("chatty"))
}

func TestErrorWithTraceID(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	assert.Equal(t, "01HZX", ErrorWithTraceID(Fields{RequestIDKey: "01HZX"}, "boom"))
	assert.NotEqual(t, "unknown", ErrorWithTraceID(nil, "boom"))
}
