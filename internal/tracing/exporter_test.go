package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewFileExporter_CreatesFile(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)
	require.NotNil(t, exporter)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created")

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)
	require.NotNil(t, exporter)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)
}

func TestNewFileExporter_AppendsToExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	err := os.WriteFile(tracePath, []byte(`{"existing": "data"}`+"\n"), 0644)
	require.NoError(t, err)

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:      "test-span",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(100 * time.Millisecond),
	}
	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.NoError(t, err)

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(tracePath)
	require.NoError(t, err)

	lines := 0
	file, err := os.Open(tracePath)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}
	require.Equal(t, 2, lines, "file should have original line plus new span")
	require.Contains(t, string(content), `{"existing": "data"}`)
}

func TestFileExporter_WritesValidJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:      "queue-prompt",
		SpanKind:  trace.SpanKindClient,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(100 * time.Millisecond),
		Status: sdktrace.Status{
			Code:        codes.Ok,
			Description: "",
		},
		Attributes: []attribute.KeyValue{
			attribute.String("prompt.id", "abc-123"),
			attribute.Int("prompt.nodes", 7),
		},
		Events: []sdktrace.Event{
			{
				Name: "queued",
				Time: time.Now(),
				Attributes: []attribute.KeyValue{
					attribute.Int("queue.number", 4),
				},
			},
		},
	}

	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.NoError(t, err)

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)

	file, err := os.Open(tracePath)
	require.NoError(t, err)
	defer file.Close()

	var record SpanRecord
	err = json.NewDecoder(file).Decode(&record)
	require.NoError(t, err, "should be valid JSON")

	require.Equal(t, "queue-prompt", record.Name)
	require.Equal(t, "CLIENT", record.Kind)
	require.Equal(t, "OK", record.Status)
	require.NotEmpty(t, record.StartTime)
	require.NotEmpty(t, record.EndTime)
	require.True(t, record.DurationMs > 0, "duration should be positive")

	require.Equal(t, "abc-123", record.Attributes["prompt.id"])
	require.EqualValues(t, 7, record.Attributes["prompt.nodes"])

	require.Len(t, record.Events, 1)
	require.Equal(t, "queued", record.Events[0].Name)
	require.EqualValues(t, 4, record.Events[0].Attributes["queue.number"])
}

func TestFileExporter_Shutdown_ClosesFile(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)

	// Second shutdown is idempotent
	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)
}

func TestFileExporter_ExportEmptySpans(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{})
	require.NoError(t, err)

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(tracePath)
	require.NoError(t, err)
	require.Zero(t, info.Size(), "file should be empty after exporting no spans")
}

func TestSpanRecord_ErrorStatus(t *testing.T) {
	tmpDir := t.TempDir()
	tracePath := filepath.Join(tmpDir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:      "error-span",
		StartTime: time.Now(),
		EndTime:   time.Now().Add(100 * time.Millisecond),
		Status: sdktrace.Status{
			Code:        codes.Error,
			Description: "execution failed on node 3",
		},
	}

	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.NoError(t, err)

	err = exporter.Shutdown(context.Background())
	require.NoError(t, err)

	file, err := os.Open(tracePath)
	require.NoError(t, err)
	defer file.Close()

	var record SpanRecord
	err = json.NewDecoder(file).Decode(&record)
	require.NoError(t, err)

	require.Equal(t, "ERROR", record.Status)
	require.Equal(t, "execution failed on node 3", record.StatusMsg)
}

func TestSpanKindToString(t *testing.T) {
	tests := []struct {
		kind     trace.SpanKind
		expected string
	}{
		{trace.SpanKindInternal, "INTERNAL"},
		{trace.SpanKindServer, "SERVER"},
		{trace.SpanKindClient, "CLIENT"},
		{trace.SpanKindProducer, "PRODUCER"},
		{trace.SpanKindConsumer, "CONSUMER"},
		{trace.SpanKindUnspecified, "UNSPECIFIED"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, spanKindToString(tt.kind))
		})
	}
}
