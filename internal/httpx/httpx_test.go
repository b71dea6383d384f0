package httpx

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := DecodeJSON(strings.NewReader(`{"name":"a"}`), &v); err != nil || v.Name != "a" {
		t.Fatalf("expected decode ok, got %v (%+v)", err, v)
	}
	if err := DecodeJSON(strings.NewReader(`{"name":"a"}{"name":"b"}`), &v); err == nil {
		t.Fatalf("expected error for two objects")
	}
	if err := DecodeJSON(strings.NewReader(`{"other":1}`), &v); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset(url.Values{}, 20, 100)
	if err != nil || limit != 20 || offset != 0 {
		t.Fatalf("expected defaults, got %d %d %v", limit, offset, err)
	}
	limit, offset, err = ParseLimitOffset(url.Values{"limit": {"500"}, "offset": {"10"}}, 20, 100)
	if err != nil || limit != 100 || offset != 10 {
		t.Fatalf("expected clamped limit, got %d %d %v", limit, offset, err)
	}
	if _, _, err := ParseLimitOffset(url.Values{"offset": {"-1"}}, 20, 100); err == nil {
		t.Fatalf("expected error for negative offset")
	}
}

func multipartForm(t *testing.T, files map[string][]byte) *multipart.Form {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(data)
	}
	_ = mw.Close()
	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return req.MultipartForm
}

func TestReadImages(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

	files, err := ReadImages(multipartForm(t, map[string][]byte{"logo.png": png}), "files", 1024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(files) != 1 || files[0].Name != "logo.png" || files[0].ContentType != "image/png" {
		t.Fatalf("unexpected files: %+v", files)
	}

	if _, err := ReadImages(multipartForm(t, map[string][]byte{"big.png": png}), "files", 8); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, err := ReadImages(multipartForm(t, map[string][]byte{"a.txt": []byte("hello")}), "files", 1024); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if files, err := ReadImages(nil, "files", 1024); err != nil || len(files) != 0 {
		t.Fatalf("expected nothing for nil form, got %v %v", files, err)
	}
}
