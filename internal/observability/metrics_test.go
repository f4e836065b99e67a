package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/seabridge/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("seabridge", "GET", "/health", 200, 12*time.Millisecond)
	RecordDatagram("st-bus", "depth")
	RecordDecodeError("st-bus", "checksum")
	RecordReconnect("client 127.0.0.1:1", false)
	SetPeersConnected("server :2000", 2)
	RecordSentence("st-to-nmea", "DBT")
}

func TestRecordQueueDropCounts(t *testing.T) {
	testlog.Start(t)
	before := testutil.ToFloat64(queueDropped.WithLabelValues("metrics-test", "read"))
	RecordQueueDrop("metrics-test", "read")
	RecordQueueDrop("metrics-test", "read")
	after := testutil.ToFloat64(queueDropped.WithLabelValues("metrics-test", "read"))
	if after-before != 2 {
		t.Fatalf("drops got=%v want=2", after-before)
	}
}

func TestRawLogWritesFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "raw", "bus.st")
	w := NewRawLog(DefaultRawLogConfig(path))
	if _, err := w.Write([]byte{0x00, 0x02, 0x00, 0xDB, 0x02}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 5 {
		t.Fatalf("raw log len got=%d want=5", len(data))
	}
}
