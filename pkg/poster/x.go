// Package poster publishes drafts to X. Posts are created with the v2 api, media goes
// through the v1.1 upload endpoint; every request is OAuth1 user-context signed.
package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"
	log "github.com/go-pkgz/lgr"

	"github.com/umputun/trendposter/pkg/domain"
)

const (
	defaultAPIHost   = "https://api.twitter.com"
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	postURLFmt       = "https://x.com/i/status/%s"
	videoChunkSize   = 4 * 1024 * 1024
	maxStatusChecks  = 30
)

// XParams defines poster credentials and endpoints
type XParams struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
	APIHost      string        // v2 api host, default https://api.twitter.com
	UploadURL    string        // v1.1 media upload endpoint
	Timeout      time.Duration // per request timeout
}

// XPoster publishes posts with optional media attachment
type XPoster struct {
	client     *twitter.Client
	httpClient *http.Client
	uploadURL  string
	pollDelay  func(secs int) time.Duration
}

// signedAuth is a no-op authorizer, requests are already signed by the oauth1 http client
type signedAuth struct{}

func (signedAuth) Add(*http.Request) {}

// NewXPoster makes a poster with OAuth1 user-context signing
func NewXPoster(params XParams) *XPoster {
	if params.APIHost == "" {
		params.APIHost = defaultAPIHost
	}
	if params.UploadURL == "" {
		params.UploadURL = defaultUploadURL
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}

	cfg := oauth1.NewConfig(params.APIKey, params.APISecret)
	httpClient := cfg.Client(oauth1.NoContext, oauth1.NewToken(params.AccessToken, params.AccessSecret))
	httpClient.Timeout = params.Timeout

	return &XPoster{
		client: &twitter.Client{
			Authorizer: signedAuth{},
			Client:     httpClient,
			Host:       strings.TrimRight(params.APIHost, "/"),
		},
		httpClient: httpClient,
		uploadURL:  params.UploadURL,
		pollDelay:  func(secs int) time.Duration { return time.Duration(secs) * time.Second },
	}
}

// Post publishes text with optional media. Text over the length limit is rejected before any network call.
func (p *XPoster) Post(ctx context.Context, text string, media *domain.Media) (*domain.PostResult, error) {
	if err := domain.ValidatePostText(text, media); err != nil {
		return nil, err
	}

	req := twitter.CreateTweetRequest{Text: text}
	if media != nil {
		mediaID, err := p.upload(ctx, *media)
		if err != nil {
			return nil, fmt.Errorf("upload media %s: %w", media.Path, err)
		}
		req.Media = &twitter.CreateTweetMedia{IDs: []string{mediaID}}
	}

	resp, err := p.client.CreateTweet(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if resp.Tweet == nil || resp.Tweet.ID == "" {
		return nil, fmt.Errorf("create post: empty response")
	}

	res := &domain.PostResult{ID: resp.Tweet.ID, Text: text, URL: fmt.Sprintf(postURLFmt, resp.Tweet.ID)}
	log.Printf("[INFO] posted %s", res.URL)
	return res, nil
}

// ValidateCredentials checks the configured account can be looked up
func (p *XPoster) ValidateCredentials(ctx context.Context) bool {
	resp, err := p.client.AuthUserLookup(ctx, twitter.UserLookupOpts{})
	if err != nil {
		log.Printf("[WARN] x credentials check failed: %v", err)
		return false
	}
	if resp.Raw == nil || len(resp.Raw.Users) == 0 || resp.Raw.Users[0] == nil {
		log.Printf("[WARN] x credentials check returned no user")
		return false
	}
	log.Printf("[INFO] x credentials valid, posting as @%s", resp.Raw.Users[0].UserName)
	return true
}

// uploadResponse is the v1.1 media/upload reply
type uploadResponse struct {
	MediaIDString  string `json:"media_id_string"`
	ProcessingInfo *struct {
		State          string `json:"state"`
		CheckAfterSecs int    `json:"check_after_secs"`
		Error          *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"processing_info"`
}

func (p *XPoster) upload(ctx context.Context, media domain.Media) (string, error) {
	data, err := os.ReadFile(media.Path)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	if media.Kind == domain.MediaVideo {
		return p.uploadChunked(ctx, data, mediaType(media.Path, data))
	}

	body, contentType, err := multipartBody(nil, "media", filepath.Base(media.Path), data)
	if err != nil {
		return "", err
	}
	resp, err := p.call(ctx, http.MethodPost, p.uploadURL, body, contentType)
	if err != nil {
		return "", err
	}
	return resp.MediaIDString, nil
}

// uploadChunked runs INIT, APPEND and FINALIZE steps required for videos, then waits for processing
func (p *XPoster) uploadChunked(ctx context.Context, data []byte, mimeType string) (string, error) {
	initForm := url.Values{
		"command":        {"INIT"},
		"total_bytes":    {strconv.Itoa(len(data))},
		"media_type":     {mimeType},
		"media_category": {"tweet_video"},
	}
	initResp, err := p.call(ctx, http.MethodPost, p.uploadURL, strings.NewReader(initForm.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", fmt.Errorf("init: %w", err)
	}
	mediaID := initResp.MediaIDString

	for segment, offset := 0, 0; offset < len(data); segment, offset = segment+1, offset+videoChunkSize {
		end := min(offset+videoChunkSize, len(data))
		fields := map[string]string{"command": "APPEND", "media_id": mediaID, "segment_index": strconv.Itoa(segment)}
		body, contentType, err := multipartBody(fields, "media", "chunk", data[offset:end])
		if err != nil {
			return "", err
		}
		if _, err := p.call(ctx, http.MethodPost, p.uploadURL, body, contentType); err != nil {
			return "", fmt.Errorf("append segment %d: %w", segment, err)
		}
	}

	finForm := url.Values{"command": {"FINALIZE"}, "media_id": {mediaID}}
	status, err := p.call(ctx, http.MethodPost, p.uploadURL, strings.NewReader(finForm.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}

	for i := 0; status.ProcessingInfo != nil && i < maxStatusChecks; i++ {
		switch status.ProcessingInfo.State {
		case "succeeded":
			return mediaID, nil
		case "failed":
			msg := "unknown error"
			if status.ProcessingInfo.Error != nil {
				msg = status.ProcessingInfo.Error.Message
			}
			return "", fmt.Errorf("media processing failed: %s", msg)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.pollDelay(status.ProcessingInfo.CheckAfterSecs)):
		}
		statusURL := p.uploadURL + "?" + url.Values{"command": {"STATUS"}, "media_id": {mediaID}}.Encode()
		if status, err = p.call(ctx, http.MethodGet, statusURL, http.NoBody, ""); err != nil {
			return "", fmt.Errorf("status: %w", err)
		}
	}
	if status.ProcessingInfo != nil && status.ProcessingInfo.State != "succeeded" {
		return "", fmt.Errorf("media processing not finished, state %s", status.ProcessingInfo.State)
	}
	return mediaID, nil
}

// call sends a signed upload request and decodes the response, empty body is allowed for APPEND
func (p *XPoster) call(ctx context.Context, method, u string, body io.Reader, contentType string) (*uploadResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	res := &uploadResponse{}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return res, nil
	}
	if err := json.Unmarshal(respBody, res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return res, nil
}

func multipartBody(fields map[string]string, fileField, fileName string, data []byte) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	fw, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", fmt.Errorf("write media: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// videoTypes covers extensions missing from minimal system mime tables
var videoTypes = map[string]string{".mp4": "video/mp4", ".m4v": "video/mp4", ".mov": "video/quicktime"}

func mediaType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
