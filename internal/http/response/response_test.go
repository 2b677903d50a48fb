package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONWrapsDataInSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	JSON(rr, req, http.StatusCreated, map[string]any{"id": 7})

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success {
		t.Fatal("expected success true")
	}
	if body.Data["id"] != float64(7) {
		t.Fatalf("expected data.id 7, got %v", body.Data["id"])
	}
}

func TestErrorCarriesCodeMessageAndDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	details := map[string][]string{"title": {"This field is required."}}
	Error(rr, req, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", details)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string              `json:"code"`
			Message string              `json:"message"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success false")
	}
	if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error payload %+v", body.Error)
	}
	if got := body.Error.Details["title"]; len(got) != 1 || got[0] != "This field is required." {
		t.Fatalf("unexpected details %v", body.Error.Details)
	}
}

func TestErrorOmitsEmptyDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Error(rr, req, http.StatusNotFound, "NOT_FOUND", "category not found", nil)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	var errObj map[string]json.RawMessage
	if err := json.Unmarshal(raw["error"], &errObj); err != nil {
		t.Fatalf("decode error object: %v", err)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected details to be omitted when nil")
	}
	if _, ok := raw["data"]; ok {
		t.Fatal("expected data to be omitted on error responses")
	}
}
