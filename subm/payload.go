package subm

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/contest/s3bucket"
	"github.com/wailsapp/mimetype"
)

const (
	maxFileBytes = 10 * 1024 * 1024 // 10 MiB
	maxLinkBytes = 2 * 1024
)

type StoredFile struct {
	S3Key     string
	MediaType string
}

// PayloadStore keeps the bodies of file submissions.
type PayloadStore interface {
	StoreFile(ctx context.Context, key string, content []byte) (StoredFile, error)
	DeleteFile(ctx context.Context, key string) error
}

func payloadKey(competitionID string, intervalID int, submUUID uuid.UUID) string {
	return fmt.Sprintf("submissions/%s/%d/%s.zst", competitionID, intervalID, submUUID)
}

type preparedFile struct {
	compressed []byte
	mediaType  string
}

func prepareFile(content []byte) (preparedFile, error) {
	mediaType := mimetype.Detect(content).String()
	compressed, err := compressWithZstd(content)
	if err != nil {
		return preparedFile{}, err
	}
	return preparedFile{compressed: compressed, mediaType: mediaType}, nil
}

// compressWithZstd compresses the given data using Zstandard compression.
func compressWithZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zstd encoder: %w", err)
	}
	defer encoder.Close()

	compressed := encoder.EncodeAll(data, make([]byte, 0, len(data)))
	return compressed, nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Zstd decoder: %w", err)
	}
	defer decoder.Close()
	return decoder.DecodeAll(data, nil)
}

type S3PayloadStore struct {
	bucket *s3bucket.S3Bucket
}

func NewS3PayloadStore(bucket *s3bucket.S3Bucket) *S3PayloadStore {
	return &S3PayloadStore{bucket: bucket}
}

func (s *S3PayloadStore) StoreFile(ctx context.Context, key string, content []byte) (StoredFile, error) {
	f, err := prepareFile(content)
	if err != nil {
		return StoredFile{}, err
	}
	_, err = s.bucket.Upload(ctx, s3bucket.Object{
		Key:             key,
		Content:         f.compressed,
		MediaType:       f.mediaType,
		ContentEncoding: "zstd",
	})
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload to S3: %w", err)
	}
	return StoredFile{S3Key: key, MediaType: f.mediaType}, nil
}

func (s *S3PayloadStore) DeleteFile(ctx context.Context, key string) error {
	return s.bucket.Delete(ctx, key)
}

// InMemPayloadStore is used by tests and local runs without S3.
type InMemPayloadStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewInMemPayloadStore() *InMemPayloadStore {
	return &InMemPayloadStore{files: map[string][]byte{}}
}

func (s *InMemPayloadStore) StoreFile(ctx context.Context, key string, content []byte) (StoredFile, error) {
	f, err := prepareFile(content)
	if err != nil {
		return StoredFile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = f.compressed
	return StoredFile{S3Key: key, MediaType: f.mediaType}, nil
}

func (s *InMemPayloadStore) DeleteFile(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Keys lists the keys of all stored files.
func (s *InMemPayloadStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}

// File returns the decompressed content stored under key.
func (s *InMemPayloadStore) File(key string) ([]byte, bool) {
	s.mu.Lock()
	compressed, ok := s.files[key]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	content, err := decompressZstd(compressed)
	if err != nil {
		return nil, false
	}
	return content, true
}

func validatePayload(p SubmitParams) error {
	switch p.Kind {
	case KindFile:
		if len(p.Content) == 0 {
			return newErrInvalidSubmission("file is empty")
		}
		if len(p.Content) > maxFileBytes {
			return newErrInvalidSubmission("file is too large, the limit is %d MiB", maxFileBytes/(1024*1024))
		}
		if p.Filename == "" {
			return newErrInvalidSubmission("filename is required")
		}
	case KindLink:
		if len(p.Link) > maxLinkBytes {
			return newErrInvalidSubmission("link is too long, the limit is %d bytes", maxLinkBytes)
		}
		u, err := url.Parse(p.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return newErrInvalidSubmission("link must be an absolute http(s) URL")
		}
	default:
		return newErrInvalidSubmission("unknown submission kind %q", p.Kind)
	}
	return nil
}
