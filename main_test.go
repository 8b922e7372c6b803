package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, setupLogger("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, setupLogger("warning").GetLevel())
	assert.Equal(t, logrus.InfoLevel, setupLogger("chatty").GetLevel())
}
