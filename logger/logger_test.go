package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	require.NotNil(t, l)
	l.InfowCtx(WithConversationID(context.Background(), "c-1"), "hello", "k", "v")
}

func TestFieldsFromContext(t *testing.T) {
	ctx := WithRequestID(WithConversationID(context.Background(), "conv"), "req")

	fields := FieldsFromContext(ctx)
	assert.Equal(t, []any{"conversation_id", "conv", "request_id", "req"}, fields)
	assert.Empty(t, FieldsFromContext(context.Background()))
}
