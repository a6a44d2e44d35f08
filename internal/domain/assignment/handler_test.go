package assignment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// acceptAll stands in for the request validator so these tests hit the
// handlers' own id parsing rather than the struct-tag layer.
type acceptAll struct{}

func (acceptAll) Validate(interface{}) error { return nil }

func postJSON(t *testing.T, path, body string, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = acceptAll{}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func badRequestCode(t *testing.T, err error) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", he.Code, http.StatusBadRequest)
	}
}

func TestAutoAssignHandlerRejectsMalformedOverrideIDs(t *testing.T) {
	h := NewHandler(newFixture().svc)
	c, _ := postJSON(t, "/patients/x/assignments/auto",
		`{"overrides":{"not-a-uuid":"also-not-a-uuid"}}`,
		map[string]string{"patientId": uuid.New().String()})

	badRequestCode(t, h.AutoAssign(c))
}

func TestManualAssignHandlerRejectsMalformedTestID(t *testing.T) {
	h := NewHandler(newFixture().svc)
	c, _ := postJSON(t, "/patients/x/assignments",
		`{"test_id":"nope"}`,
		map[string]string{"patientId": uuid.New().String()})

	badRequestCode(t, h.ManualAssign(c))
}

func TestManualAssignHandlerRejectsMalformedAdminID(t *testing.T) {
	h := NewHandler(newFixture().svc)
	c, _ := postJSON(t, "/patients/x/assignments",
		`{"test_id":"`+uuid.New().String()+`","admin_id":"nope"}`,
		map[string]string{"patientId": uuid.New().String()})

	badRequestCode(t, h.ManualAssign(c))
}

func TestReassignHandlerRejectsMalformedAdminID(t *testing.T) {
	h := NewHandler(newFixture().svc)
	c, _ := postJSON(t, "/assignments/x/reassign",
		`{"admin_id":"nope"}`,
		map[string]string{"id": uuid.New().String()})

	badRequestCode(t, h.Reassign(c))
}
