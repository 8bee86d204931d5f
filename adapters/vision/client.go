package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"
)

// jpegQuality is used when frames are shipped to model services.
const jpegQuality = 85

// modelClient posts frames to a model service as base64 JPEG.
type modelClient struct {
	baseURL string
	c       *http.Client
}

func newModelClient(baseURL string, timeout time.Duration) modelClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return modelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		c:       &http.Client{Timeout: timeout},
	}
}

type frameReq struct {
	Image string `json:"image"`
}

func encodeFrame(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (m modelClient) postFrame(ctx context.Context, path string, img image.Image, out any) error {
	encoded, err := encodeFrame(img)
	if err != nil {
		return err
	}
	b, _ := json.Marshal(frameReq{Image: encoded})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", path, err)
	}
	return nil
}
