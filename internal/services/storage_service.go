package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	maxAttachmentBytes   = 10 << 20
	defaultSignedURLTTL  = time.Hour
	storageErrorBodySize = 2048
)

var ErrAttachmentTooLarge = errors.New("attachment too large")

// StorageService keeps plan attachments in an object store.
type StorageService interface {
	UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	GetSignedURL(ctx context.Context, fileURL string) (string, error)
}

// SupabaseStorageService talks to the Supabase storage REST API with a
// service key.
type SupabaseStorageService struct {
	baseURL      string
	bucket       string
	serviceKey   string
	signedURLTTL time.Duration
	httpClient   *http.Client
}

func NewSupabaseStorageService(baseURL, bucket, serviceKey string) *SupabaseStorageService {
	return &SupabaseStorageService{
		baseURL:      strings.TrimRight(baseURL, "/"),
		bucket:       bucket,
		serviceKey:   serviceKey,
		signedURLTTL: defaultSignedURLTTL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStorageService) UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error) {
	objectPath := path.Join(strings.Trim(folder, "/"), path.Base(filename))

	content, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes+1))
	if err != nil {
		return "", fmt.Errorf("read attachment: %w", err)
	}
	if len(content) > maxAttachmentBytes {
		return "", ErrAttachmentTooLarge
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.objectURL(objectPath), bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-upsert", "true")
	req.Header.Set("Content-Type", http.DetectContentType(content))

	resp, err := s.do(req, "upload attachment")
	if err != nil {
		return "", err
	}
	resp.Body.Close()

	logrus.WithFields(logrus.Fields{
		"object": objectPath,
		"bytes":  len(content),
	}).Debug("attachment uploaded")

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath), nil
}

// DeleteFile removes the object behind fileURL. A missing object is not an
// error.
func (s *SupabaseStorageService) DeleteFile(ctx context.Context, fileURL string) error {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return err
	}

	req, err := s.newRequest(ctx, http.MethodDelete, s.objectURL(objectPath), nil)
	if err != nil {
		return err
	}

	resp, err := s.do(req, "delete attachment")
	if err != nil {
		var statusErr *storageStatusError
		if errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound {
			return nil
		}
		return err
	}
	resp.Body.Close()
	return nil
}

func (s *SupabaseStorageService) GetSignedURL(ctx context.Context, fileURL string) (string, error) {
	objectPath, err := s.objectPathFromURL(fileURL)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]int{"expiresIn": int(s.signedURLTTL.Seconds())})
	if err != nil {
		return "", fmt.Errorf("marshal sign request: %w", err)
	}

	signURL := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.baseURL, s.bucket, objectPath)
	req, err := s.newRequest(ctx, http.MethodPost, signURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req, "sign attachment url")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if signed.SignedURL == "" {
		return "", errors.New("sign response without url")
	}
	return s.baseURL + "/storage/v1" + signed.SignedURL, nil
}

func (s *SupabaseStorageService) objectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *SupabaseStorageService) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build storage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	return req, nil
}

type storageStatusError struct {
	op     string
	status int
	body   string
}

func (e *storageStatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.op, e.status, e.body)
}

// do executes req and turns non-2xx responses into a storageStatusError.
// The caller owns the body of a successful response.
func (s *SupabaseStorageService) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, storageErrorBodySize))
	return nil, &storageStatusError{op: op, status: resp.StatusCode, body: strings.TrimSpace(string(body))}
}

func (s *SupabaseStorageService) objectPathFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", fmt.Errorf("parse attachment url: %w", err)
	}

	for _, prefix := range []string{
		"/storage/v1/object/public/" + s.bucket + "/",
		"/storage/v1/object/" + s.bucket + "/",
	} {
		if strings.HasPrefix(parsed.Path, prefix) {
			return strings.TrimPrefix(parsed.Path, prefix), nil
		}
	}
	return "", errors.New("attachment url outside configured bucket")
}
