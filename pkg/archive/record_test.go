package archive

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/vango-dev/webcast/pkg/protocol"
	"github.com/vango-dev/webcast/pkg/session"
)

func testRecord() *Record {
	return &Record{
		ReceivedAt:  time.Date(2024, 3, 9, 23, 59, 58, 123456789, time.UTC),
		SessionID:   "a1b2c3d4e5f60718",
		ContainerID: 42,
		SeqID:       7,
		Service:     "webcast",
		Method:      "WebcastChatMessage",
		Headers:     map[string]string{"im-cursor": "t-1", "compress_type": "gzip"},
		Payload:     []byte{0x0A, 0x03, 'f', 'o', 'o'},
	}
}

func TestRecord_MarshalRoundTrip(t *testing.T) {
	r := testRecord()
	data, err := r.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	got, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord() error = %v", err)
	}
	if !got.ReceivedAt.Equal(r.ReceivedAt) {
		t.Errorf("ReceivedAt = %v, want %v", got.ReceivedAt, r.ReceivedAt)
	}
	if got.ContainerID != 42 || got.SeqID != 7 || got.Method != r.Method {
		t.Errorf("record = %+v", got)
	}
	if got.Headers["im-cursor"] != "t-1" {
		t.Errorf("Headers = %v", got.Headers)
	}
	if !bytes.Equal(got.Payload, r.Payload) {
		t.Errorf("Payload = % X", got.Payload)
	}
}

func TestRecord_MarshalDeterministic(t *testing.T) {
	a, err := testRecord().Marshal()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		b, err := testRecord().Marshal()
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Fatal("Marshal() is not deterministic across map orderings")
		}
	}
}

func TestUnmarshalRecord_Invalid(t *testing.T) {
	if _, err := UnmarshalRecord([]byte{0xFF, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}

func TestKey(t *testing.T) {
	r := testRecord()
	data, _ := r.Marshal()

	key := Key("webcast", r.ReceivedAt, data)
	pattern := regexp.MustCompile(`^webcast/2024/03/09/[0-9a-f]{64}\.cbor$`)
	if !pattern.MatchString(key) {
		t.Errorf("Key() = %q", key)
	}

	if Key("webcast", r.ReceivedAt, data) != key {
		t.Error("Key() is not stable")
	}
	if Key("webcast", r.ReceivedAt, append(data, 0)) == key {
		t.Error("Key() ignores content")
	}

	// Local times are keyed by their UTC date
	local := r.ReceivedAt.In(time.FixedZone("UTC+8", 8*3600))
	if Key("webcast", local, data) != key {
		t.Error("Key() depends on the time zone")
	}

	if k := Key("", r.ReceivedAt, data); k[:11] != "2024/03/09/" {
		t.Errorf("Key() without prefix = %q", k)
	}
}

func TestNewRecord(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := session.Event{
		Kind:    session.EventPayload,
		Time:    at,
		Payload: []byte("payload"),
		Container: &protocol.Container{
			ID:      9,
			SeqID:   3,
			Service: "svc",
			Method:  "WebcastGiftMessage",
		},
	}

	r := NewRecord("sess", ev)
	if r.SessionID != "sess" || r.ContainerID != 9 || r.SeqID != 3 {
		t.Errorf("record = %+v", r)
	}
	if r.Method != "WebcastGiftMessage" || r.Service != "svc" {
		t.Errorf("routing = %q/%q", r.Service, r.Method)
	}
	if !r.ReceivedAt.Equal(at) || string(r.Payload) != "payload" {
		t.Errorf("record = %+v", r)
	}

	bare := NewRecord("sess", session.Event{Kind: session.EventPayload, Time: at, Payload: []byte("x")})
	if bare.ContainerID != 0 || bare.Method != "" {
		t.Errorf("record without container = %+v", bare)
	}
}
