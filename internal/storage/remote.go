package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/erazemk/lostfound/internal/auth"
)

// Remote stores files on an external image host.
//
// Uploads are POST <endpoint>/upload (multipart: file, folder) and deletes
// are DELETE <endpoint>/assets/<public id>. Requests carry a short-lived
// service token issued as the API key and signed with the API secret.
type Remote struct {
	endpoint  string
	apiKey    string
	apiSecret string
	client    *http.Client
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
}

// NewRemote creates a remote backend. A nil client means http.DefaultClient;
// the gateway's context carries the upload timeout.
func NewRemote(endpoint, apiKey, apiSecret string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		endpoint:  strings.TrimRight(endpoint, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    client,
	}
}

// Put uploads data and returns the host's public id and secure URL.
func (r *Remote) Put(ctx context.Context, folder string, data []byte, mime string) (Stored, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("folder", folder); err != nil {
		return Stored{}, fmt.Errorf("writing folder field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload.jpg"`)
	header.Set("Content-Type", mime)
	part, err := mw.CreatePart(header)
	if err != nil {
		return Stored{}, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return Stored{}, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return Stored{}, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, r.endpoint+"/upload", folder, &body)
	if err != nil {
		return Stored{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return Stored{}, fmt.Errorf("uploading to image host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Stored{}, fmt.Errorf("image host returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out uploadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Stored{}, fmt.Errorf("decoding image host response: %w", err)
	}

	u, err := url.Parse(out.SecureURL)
	if out.SecureURL == "" || err != nil || u.Scheme != "https" || u.Host == "" {
		return Stored{}, fmt.Errorf("image host returned invalid secure_url %q", out.SecureURL)
	}

	return Stored{Path: NormalizePath(out.PublicID), URL: out.SecureURL}, nil
}

// Delete removes an asset by public id. A 404 from the host is not an error.
func (r *Remote) Delete(ctx context.Context, publicID string) error {
	req, err := r.newRequest(ctx, http.MethodDelete, r.endpoint+"/assets/"+escapePath(publicID), "", nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting from image host: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("image host returned %d on delete", resp.StatusCode)
	}
	return nil
}

func (r *Remote) newRequest(ctx context.Context, method, target, folder string, body io.Reader) (*http.Request, error) {
	token, err := auth.GenerateServiceToken(r.apiKey, r.apiSecret, folder)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// escapePath escapes each segment of a slash-separated public id.
func escapePath(id string) string {
	segs := strings.Split(NormalizePath(id), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
