package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("expected no fields, got %v", got)
	}

	uid := uuid.New()
	ctx := WithTrace(context.Background(), Trace{TraceID: "t-1", RequestID: "r-1"})
	ctx = WithRequestData(ctx, &RequestData{UserID: uid, Role: "admin"})

	got := LogFields(ctx)
	want := []interface{}{"trace_id", "t-1", "request_id", "r-1", "user_id", uid.String()}
	if len(got) != len(want) {
		t.Fatalf("fields=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fields[%d]=%v want %v", i, got[i], want[i])
		}
	}
}

func TestTraceFromNilContext(t *testing.T) {
	//nolint:staticcheck
	if _, ok := TraceFrom(nil); ok {
		t.Fatal("nil context carries no trace")
	}
}
