// Package upload sends images straight to the image host using a
// signature issued by the backend.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cinelume/internal/apperr"
	"cinelume/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxImageSize = 10 << 20

type Result struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Bytes     int64  `json:"bytes"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Image uploads the contents of r under a fresh public id and returns the
// hosted URL.
func (c *Client) Image(ctx context.Context, sig models.UploadSignature, filename string, r io.Reader) (*Result, error) {
	const op = "upload image"

	if sig.CloudName == "" || sig.APIKey == "" || sig.Signature == "" {
		return nil, apperr.Validation(op, "The upload signature is incomplete.")
	}

	body, contentType, err := buildForm(sig, filename, r)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err)
	}

	url := fmt.Sprintf("%s/%s/image/upload", c.baseURL, sig.CloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"cloud":  sig.CloudName,
		}).Warn("Image host rejected upload")
		return nil, &apperr.Error{Kind: apperr.KindRequest, Op: op, Status: resp.StatusCode, Message: "The image could not be uploaded."}
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, apperr.Wrap(apperr.KindRequest, op, fmt.Errorf("failed to parse response: %w", err))
	}
	if result.SecureURL == "" {
		return nil, apperr.New(apperr.KindRequest, op, "The image host returned no URL.")
	}

	c.logger.WithFields(logrus.Fields{
		"public_id": result.PublicID,
		"bytes":     result.Bytes,
	}).Debug("Image uploaded")
	return &result, nil
}

func buildForm(sig models.UploadSignature, filename string, r io.Reader) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ key, value string }{
		{"api_key", sig.APIKey},
		{"timestamp", strconv.FormatInt(sig.Timestamp, 10)},
		{"signature", sig.Signature},
		{"public_id", uuid.NewString()},
	}
	if sig.Folder != "" {
		fields = append(fields, struct{ key, value string }{"folder", sig.Folder})
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write %s: %w", f.key, err)
		}
	}

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if n == 0 {
		return nil, "", fmt.Errorf("image %s is empty", filename)
	}
	if n > maxImageSize {
		return nil, "", fmt.Errorf("image %s is larger than %d bytes", filename, maxImageSize)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
