package netx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type reply struct {
	Success bool `json:"success"`
}

func TestPostFormJSON(t *testing.T) {
	form := url.Values{"secret": {"k"}, "response": {"tok"}}

	t.Run("success 200 OK", func(t *testing.T) {
		var gotCT, gotMethod, gotSecret string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			_ = r.ParseForm()
			gotSecret = r.PostForm.Get("secret")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer ts.Close()

		var out reply
		if err := PostFormJSON(context.Background(), ts.Client(), ts.URL, form, &out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotMethod != http.MethodPost {
			t.Fatalf("method = %q, want POST", gotMethod)
		}
		if gotCT != "application/x-www-form-urlencoded" {
			t.Fatalf("Content-Type = %q", gotCT)
		}
		if gotSecret != "k" {
			t.Fatalf("secret = %q, want k", gotSecret)
		}
		if !out.Success {
			t.Fatal("expected success=true")
		}
	})

	t.Run("non-2xx -> StatusError", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("down"))
		}))
		defer ts.Close()

		err := PostFormJSON(context.Background(), ts.Client(), ts.URL, form, &reply{})
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable || se.Body != "down" {
			t.Fatalf("want StatusError 503, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer ts.Close()

		err := PostFormJSON(context.Background(), ts.Client(), ts.URL, form, &reply{})
		if err == nil || !strings.Contains(err.Error(), "decode response") {
			t.Fatalf("want decode error, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer ts.Close()

		client := &http.Client{Timeout: 20 * time.Millisecond}
		if err := PostFormJSON(context.Background(), client, ts.URL, form, &reply{}); err == nil {
			t.Fatal("expected timeout error")
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if err := PostFormJSON(context.Background(), http.DefaultClient, "://bad", form, &reply{}); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDoJSON(t *testing.T) {
	t.Run("error status still decodes", func(t *testing.T) {
		var gotCT, gotHdr, gotBody string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCT = r.Header.Get("Content-Type")
			gotHdr = r.Header.Get("X-Request-ID")
			b := new(strings.Builder)
			_, _ = io.Copy(b, r.Body)
			gotBody = b.String()
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer ts.Close()

		var out reply
		code, err := DoJSON(context.Background(), ts.Client(), http.MethodPost, ts.URL, http.Header{"X-Request-Id": {"rq-1"}}, map[string]string{"a": "b"}, &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if code != http.StatusConflict || !out.Success {
			t.Fatalf("code=%d out=%+v", code, out)
		}
		if gotCT != "application/json" || gotHdr != "rq-1" || gotBody != `{"a":"b"}` {
			t.Fatalf("ct=%q hdr=%q body=%q", gotCT, gotHdr, gotBody)
		}
	})

	t.Run("non JSON reply", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
		defer ts.Close()

		var out reply
		code, err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, nil, nil, &out)
		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusBadGateway || code != http.StatusBadGateway {
			t.Fatalf("want StatusError 502, got code=%d err=%v", code, err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		var out reply
		_, err := DoJSON(context.Background(), http.DefaultClient, http.MethodGet, "http://127.0.0.1:1", nil, nil, &out)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}
