package audit

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestLogSinkWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))

	entityID := uuid.New()
	sink.Record(context.Background(), "tech-1", "assignment.reassign", "assignment", entityID,
		map[string]interface{}{"admin_id": "x"})

	out := buf.String()
	for _, want := range []string{"assignment.reassign", "tech-1", entityID.String()} {
		if !strings.Contains(out, want) {
			t.Errorf("log entry %q missing %q", out, want)
		}
	}
}

type captureSink struct {
	actions []string
}

func (c *captureSink) Record(_ context.Context, _, action, _ string, _ uuid.UUID, _ map[string]interface{}) {
	c.actions = append(c.actions, action)
}

func TestMiddlewareRecordsOnlyMutations(t *testing.T) {
	sink := &captureSink{}
	e := echo.New()
	handler := Middleware(sink)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		req := httptest.NewRequest(method, "/tests", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath("/tests")
		if err := handler(c); err != nil {
			t.Fatalf("%s: %v", method, err)
		}
	}

	if len(sink.actions) != 1 || !strings.HasPrefix(sink.actions[0], "POST") {
		t.Errorf("recorded actions = %v, want only the POST", sink.actions)
	}
}
