package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%d) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestValidationEnumeratesAllDetails(t *testing.T) {
	details := []string{"Invalid lecture ID", "Text is required", "Timestamp must be a non-negative number"}
	err := Validation(details)

	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error")
	}
	if e.Code() != ErrorCodeValidation {
		t.Fatalf("code = %d, want validation", e.Code())
	}
	if len(e.Details()) != 3 {
		t.Fatalf("details = %d, want 3", len(e.Details()))
	}
	w := e.ToWire()
	if len(w.Details) != 3 || w.Details[1] != "Text is required" {
		t.Fatalf("wire details not preserved: %+v", w)
	}
}

func TestValidationSingleDetailIsMessage(t *testing.T) {
	err := Validation([]string{"Title is required"})
	if err.Error() != "Title is required" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestWrapAndRoot(t *testing.T) {
	cause := stderrs.New("socket closed")
	err := Wrap(cause, ErrorCodeUnavailable, "classifier call failed")

	if CodeOf(err) != ErrorCodeUnavailable {
		t.Fatalf("CodeOf = %d", CodeOf(err))
	}
	if Root(err) != cause {
		t.Fatalf("Root() did not unwrap to cause")
	}
	if !stderrs.Is(err, err) {
		t.Fatalf("errors.Is identity failed")
	}
}

func TestWireFromForeignError(t *testing.T) {
	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Message != "boom" {
		t.Fatalf("WireFrom foreign = %+v", w)
	}
}

func TestHTTPBundles(t *testing.T) {
	status, w := HTTP(Forbiddenf("not your lecture"))
	if status != http.StatusForbidden || w.Message != "not your lecture" {
		t.Fatalf("HTTP() = %d %+v", status, w)
	}
	status, w = HTTP(nil)
	if status != http.StatusOK || w.Message != "" {
		t.Fatalf("HTTP(nil) = %d %+v", status, w)
	}
}
