package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "operation and collection",
			setupCtx: func() context.Context {
				ctx := WithOperation(context.Background(), "todo.add")
				return WithCollection(ctx, "todos")
			},
			wantKeys: []string{"op", "collection"},
		},
		{
			name: "only operation",
			setupCtx: func() context.Context {
				return WithOperation(context.Background(), "idea.convert")
			},
			wantKeys:  []string{"op"},
			wantEmpty: []string{"collection"},
		},
		{
			name: "only collection",
			setupCtx: func() context.Context {
				return WithCollection(context.Background(), "ideas")
			},
			wantKeys:  []string{"collection"},
			wantEmpty: []string{"op"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"op", "collection"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.setupCtx()).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
