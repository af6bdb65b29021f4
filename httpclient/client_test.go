package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDoMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("model") != "medium" {
			t.Errorf("model field = %q", r.FormValue("model"))
		}
		f, hdr, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if hdr.Filename != "canonical.wav" || string(data) != "RIFF" {
			t.Errorf("unexpected file %q with %q", hdr.Filename, data)
		}
		if hdr.Header.Get("Content-Type") != "audio/wav" {
			t.Errorf("file content type = %q", hdr.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Client") != "offlinestt" {
			t.Errorf("default header missing")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/", Headers: map[string]string{"X-Client": "offlinestt"}})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &MultipartBody{
			Fields: map[string]string{"model": "medium"},
			Files: []FileField{{
				FieldName:   "audio",
				FileName:    "canonical.wav",
				ContentType: "audio/wav",
				Reader:      strings.NewReader("RIFF"),
			}},
		},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := DecodeJSON(resp, &out); err != nil || out.Text != "ok" {
		t.Fatalf("decode: %v, %+v", err, out)
	}
}

func TestDoClassifiesStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{http.StatusNotFound, ErrCodeNotFound, false},
		{http.StatusBadRequest, ErrCodeValidation, false},
		{http.StatusTooManyRequests, ErrCodeRateLimit, true},
		{http.StatusServiceUnavailable, ErrCodeServer, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model loading", tt.status)
			}))
			defer srv.Close()

			c, _ := New(Config{BaseURL: srv.URL})
			resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "health"})
			e, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if e.Code != tt.code || e.Retryable != tt.retryable || IsRetryable(err) != tt.retryable {
				t.Errorf("got code %s retryable %v", e.Code, e.Retryable)
			}
			if !strings.Contains(e.Error(), "model loading") {
				t.Errorf("expected body excerpt in %q", e.Error())
			}
			if resp == nil || resp.IsSuccess() {
				t.Errorf("expected failed response to be returned")
			}
		})
	}
}

func TestDoConnectionAndTimeout(t *testing.T) {
	c, _ := New(Config{BaseURL: "http://127.0.0.1:1"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "health"})
	if !IsRetryable(err) || IsTimeout(err) {
		t.Errorf("expected retryable connection error, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	slow, _ := New(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := slow.Do(ctx, Request{Method: http.MethodGet, Path: "/"}); !IsTimeout(err) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if _, err := New(Config{BaseURL: "not a url"}); err == nil {
		t.Error("expected invalid base url to be rejected")
	}
	c := Config{}
	c.ApplyDefaults()
	if c.Timeout != defaultTimeout {
		t.Errorf("timeout = %v", c.Timeout)
	}
}

func TestDecodeJSONError(t *testing.T) {
	err := DecodeJSON(&Response{StatusCode: 200, Body: []byte("<html>")}, &struct{}{})
	if e, ok := err.(*Error); !ok || e.Code != ErrCodeDecode || e.Retryable {
		t.Errorf("expected non-retryable decode error, got %v", err)
	}
}
