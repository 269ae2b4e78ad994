package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestInflateIdentity(t *testing.T) {
	for _, enc := range []string{EncodingNone, EncodingProtobuf} {
		got, err := Inflate(enc, []byte("abc"))
		if err != nil {
			t.Fatalf("Inflate(%q) error = %v", enc, err)
		}
		if string(got) != "abc" {
			t.Errorf("Inflate(%q) = %q", enc, got)
		}
	}

	got, err := Inflate(EncodingNone, nil)
	if err != nil || got == nil {
		t.Errorf("Inflate(nil) = %v, %v; want empty non-nil slice", got, err)
	}
}

func TestInflateGzipLimit(t *testing.T) {
	raw, err := Gzip(make([]byte, MaxPayloadSize+1))
	if err != nil {
		t.Fatalf("Gzip() error = %v", err)
	}
	if _, err := Inflate(EncodingGzip, raw); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("Inflate() error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	payload := []byte(`{"foo":"bar"}`)
	raw, err := Gzip(payload)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Inflate(EncodingGzip, raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Inflate(Gzip(p)) = %q, want %q", got, payload)
	}
}
