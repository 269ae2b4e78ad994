package archive

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContentType is the media type of archived objects.
const ContentType = "application/cbor"

// Store persists records. Put returns the key the record was written to.
type Store interface {
	Put(ctx context.Context, r *Record) (string, error)
}

// PutObjectAPI is the part of the S3 client S3Store uses.
// *s3.Client satisfies it.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes records to an S3 bucket.
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a store for the given bucket.
//
// Parameters:
//   - client: S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: Key prefix (e.g., "webcast")
func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, r *Record) (string, error) {
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}
	key := Key(s.prefix, r.ReceivedAt, data)

	metadata := map[string]string{
		"session-id": r.SessionID,
		"method":     r.Method,
	}
	if r.ContainerID > 0 {
		metadata["container-id"] = strconv.FormatUint(r.ContainerID, 10)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType),
		Metadata:      metadata,
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", key, err)
	}
	return key, nil
}

// MemoryStore keeps encoded records in memory, keyed like S3Store.
type MemoryStore struct {
	prefix string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		prefix:  prefix,
		objects: make(map[string][]byte),
	}
}

// Put implements Store.
func (m *MemoryStore) Put(ctx context.Context, r *Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}
	key := Key(m.prefix, r.ReceivedAt, data)

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

// Get returns the record stored under key.
func (m *MemoryStore) Get(key string) (*Record, bool) {
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	r, err := UnmarshalRecord(data)
	if err != nil {
		return nil, false
	}
	return r, true
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
