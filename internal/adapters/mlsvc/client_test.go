package mlsvc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestDetectCodeSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect-code" || r.Method != http.MethodPost {
			t.Fatalf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isCode":true,"language":"python","correctedText":"for i in range(10):","confidence":0.93}`))
	})

	d := c.DetectCode(context.Background(), "for i in range ten")
	if !d.IsCode || d.Language != "python" || d.Confidence != 0.93 {
		t.Fatalf("detection = %+v", d)
	}
	if d.CorrectedText != "for i in range(10):" {
		t.Fatalf("corrected = %q", d.CorrectedText)
	}
	if d.Fallback {
		t.Fatalf("success must not be marked fallback")
	}
}

func TestDetectCodeCoercesMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		// language missing, confidence out of range, correctedText empty
		_, _ = w.Write([]byte(`{"isCode":true,"correctedText":"","confidence":1.7}`))
	})

	d := c.DetectCode(context.Background(), "some words")
	if !d.IsCode {
		t.Fatalf("isCode should survive coercion")
	}
	if d.Language != "other" {
		t.Fatalf("language = %q want other", d.Language)
	}
	if d.CorrectedText != "some words" {
		t.Fatalf("corrected text should default to input, got %q", d.CorrectedText)
	}
	if d.Confidence != 1 {
		t.Fatalf("confidence = %v want clamp to 1", d.Confidence)
	}

	c2 := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"confidence":-0.5}`))
	})
	d2 := c2.DetectCode(context.Background(), "x")
	if d2.Confidence != 0 || d2.IsCode {
		t.Fatalf("negative confidence should clamp to 0, got %+v", d2)
	}
}

func TestDetectCodeEmptyTextShortCircuits(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	d := c.DetectCode(context.Background(), "")
	if called {
		t.Fatalf("empty text must not hit the service")
	}
	if d.IsCode || d.Language != "other" || d.CorrectedText != "" || d.Confidence != 0 {
		t.Fatalf("detection = %+v", d)
	}
	if !d.Fallback || d.Err == nil {
		t.Fatalf("empty text should be marked fallback with cause")
	}
}

func TestDetectCodeFallbackOnServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	text := "const x equals five"
	d := c.DetectCode(context.Background(), text)
	if d.IsCode || d.Language != "other" || d.Confidence != 0 {
		t.Fatalf("detection = %+v", d)
	}
	if d.CorrectedText != text {
		t.Fatalf("fallback must pass text through, got %q", d.CorrectedText)
	}
	if !d.Fallback || d.Err == nil {
		t.Fatalf("failure should be marked fallback with cause")
	}
}

func TestDetectCodeFallbackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"isCode":true}`))
	}))
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})

	d := c.DetectCode(context.Background(), "slow")
	if !d.Fallback || d.IsCode {
		t.Fatalf("timeout should fall back, got %+v", d)
	}
}

func TestDetectCodeFallbackOnMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	d := c.DetectCode(context.Background(), "x")
	if !d.Fallback {
		t.Fatalf("malformed body should fall back, got %+v", d)
	}
}

func TestBatchCorrect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batch-correct" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"corrections":[{"index":0,"correctedCode":"print(1)","confidence":0.8}]}`))
	})

	res := c.BatchCorrect(context.Background(), []string{"print one"})
	if res.Err != nil {
		t.Fatalf("err = %v", res.Err)
	}
	if len(res.Corrections) != 1 || res.Corrections[0].CorrectedCode != "print(1)" {
		t.Fatalf("corrections = %+v", res.Corrections)
	}
}

func TestBatchCorrectRejectsOversizedLocally(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	big := make([]string, 101)
	res := c.BatchCorrect(context.Background(), big)
	if called {
		t.Fatalf("oversized batch must not hit the service")
	}
	if res.Err == nil || len(res.Corrections) != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestBatchCorrectEmptyIsNoop(t *testing.T) {
	called := false
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })
	res := c.BatchCorrect(context.Background(), nil)
	if called || res.Err != nil || len(res.Corrections) != 0 {
		t.Fatalf("empty batch should be a local no-op, got %+v called=%v", res, called)
	}
}

func TestBatchCorrectServiceFailureSetsMarker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	res := c.BatchCorrect(context.Background(), []string{"a"})
	if res.Err == nil || len(res.Corrections) != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestModelStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/model-stats" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"model":"codet5","version":"1.2"}`))
	})
	stats := c.ModelStats(context.Background())
	if stats == nil || stats["model"] != "codet5" {
		t.Fatalf("stats = %v", stats)
	}

	down := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	if got := down.ModelStats(context.Background()); got != nil {
		t.Fatalf("stats on failure = %v want nil", got)
	}
}

func TestCheckHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"healthy","uptime":12}`))
	})
	h := c.CheckHealth(context.Background())
	if h["status"] != "healthy" {
		t.Fatalf("health = %v", h)
	}

	down := New(Options{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	h = down.CheckHealth(context.Background())
	if h["status"] != "unhealthy" {
		t.Fatalf("health on failure = %v", h)
	}
}
