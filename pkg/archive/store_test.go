package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putCall struct {
	bucket      string
	key         string
	contentType string
	length      int64
	metadata    map[string]string
	body        []byte
}

// fakePutter records PutObject calls.
type fakePutter struct {
	mu    sync.Mutex
	calls []putCall
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, putCall{
		bucket:      aws.ToString(in.Bucket),
		key:         aws.ToString(in.Key),
		contentType: aws.ToString(in.ContentType),
		length:      aws.ToInt64(in.ContentLength),
		metadata:    in.Metadata,
		body:        body,
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *fakePutter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestS3Store_Put(t *testing.T) {
	putter := &fakePutter{}
	store := NewS3Store(putter, "payloads", "webcast")

	r := testRecord()
	key, err := store.Put(context.Background(), r)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(key, "webcast/2024/03/09/") {
		t.Errorf("key = %q", key)
	}

	if putter.callCount() != 1 {
		t.Fatalf("PutObject calls = %d, want 1", putter.callCount())
	}
	call := putter.calls[0]
	if call.bucket != "payloads" || call.key != key {
		t.Errorf("bucket/key = %q/%q", call.bucket, call.key)
	}
	if call.contentType != ContentType {
		t.Errorf("ContentType = %q", call.contentType)
	}
	if call.length != int64(len(call.body)) {
		t.Errorf("ContentLength = %d, body %d", call.length, len(call.body))
	}
	if call.metadata["container-id"] != "42" || call.metadata["session-id"] != r.SessionID {
		t.Errorf("Metadata = %v", call.metadata)
	}

	got, err := UnmarshalRecord(call.body)
	if err != nil {
		t.Fatalf("stored body does not decode: %v", err)
	}
	if got.Method != r.Method {
		t.Errorf("stored Method = %q", got.Method)
	}
}

func TestS3Store_PutError(t *testing.T) {
	putErr := errors.New("access denied")
	store := NewS3Store(&fakePutter{err: putErr}, "payloads", "webcast")

	if _, err := store.Put(context.Background(), testRecord()); !errors.Is(err, putErr) {
		t.Errorf("Put() error = %v, want %v", err, putErr)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("mem")
	r := testRecord()

	key, err := store.Put(context.Background(), r)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	// Same record, same key
	if again, _ := store.Put(context.Background(), r); again != key {
		t.Errorf("second Put() key = %q, want %q", again, key)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	got, ok := store.Get(key)
	if !ok || got.ContainerID != r.ContainerID {
		t.Errorf("Get() = %+v, %v", got, ok)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, r); !errors.Is(err, context.Canceled) {
		t.Errorf("Put() with cancelled ctx = %v", err)
	}
}
