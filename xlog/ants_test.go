package xlog

import (
	"strings"
	"sync"
	"testing"
	"time"

	antsv2 "github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestAntsXLogger_ParentLogLevelChanged(t *testing.T) {
	var (
		parentLogger XLogger      = nil
		logger       *AntsXLogger = nil
	)
	logger.Printf("test %d", 123)
	NewAntsXLogger(nil).Printf("test %d", 123)

	w := newTestMemWriter()
	parentLogger = NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerEncoder(JSON),
		WithXLoggerWriter(testMemAsOut),
	)
	logger = NewAntsXLogger(parentLogger)

	parentLogger.IncreaseLogLevel(zapcore.FatalLevel)
	logger.Printf("test %d", 123)
	require.Empty(t, w.String())

	parentLogger.IncreaseLogLevel(zapcore.DebugLevel)
	logger.Printf("test %d", 456)
	m := decodeLine(t, w.lines()[0])
	require.Equal(t, "Ants", m["component"])
	require.Equal(t, "test 456", m["msg"])
	require.NotContains(t, m, "callAt")
	_ = parentLogger.Sync()
}

func TestAntsXLogger_AntsPool(t *testing.T) {
	w := newTestMemWriter()
	parentLogger := NewXLogger(
		WithXLoggerLevel(LogLevelDebug),
		WithXLoggerWriter(testMemAsOut),
	)
	logger := NewAntsXLogger(parentLogger)

	p, err := antsv2.NewPool(10, antsv2.WithLogger(logger))
	require.NoError(t, err)
	defer p.Release()

	wg := sync.WaitGroup{}
	wg.Add(1)
	err = p.Submit(func() {
		defer wg.Done()
		panic("xlogger panic in ants pool")
	})
	require.NoError(t, err)
	wg.Wait()
	require.Eventually(t, func() bool {
		return strings.Contains(w.String(), "xlogger panic in ants pool")
	}, time.Second, 10*time.Millisecond)
}
