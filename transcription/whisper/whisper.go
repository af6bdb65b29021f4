// Package whisper transcribes through a faster-whisper HTTP sidecar and
// renders the returned segments with transcription.WriteMarkdown.
package whisper

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/httpclient"
	"github.com/kbukum/offlinestt/provider"
	"github.com/kbukum/offlinestt/transcription"
)

const (
	// ProviderName is the registered name of the sidecar backend.
	ProviderName = "sidecar"

	defaultTimeout = 30 * time.Minute
)

// Config holds configuration for the sidecar backend.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider against the sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a sidecar provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		return nil, errors.InvalidConfig("transcription.sidecar_url is required for the sidecar backend")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, errors.InvalidConfig(err.Error())
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory reading the keys produced by
// transcription.FactoryConfig.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return NewProvider(wc)
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the sidecar answers its health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.IsSuccess()
}

// Execute uploads the canonical audio, then writes the markdown transcript
// to req.OutputPath.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, errors.InputNotFound(req.AudioPath).WithCause(err)
	}
	defer f.Close()

	fields := map[string]string{"model": req.Model}
	if lang := req.LanguageHint(); lang != "" {
		fields["language"] = lang
	}
	if req.Device != "" {
		fields["device"] = req.Device
	}
	if req.ComputeType != "" {
		fields["compute_type"] = req.ComputeType
	}

	httpResp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    filepath.Base(req.AudioPath),
				ContentType: "audio/wav",
				Reader:      f,
			}},
		},
	})
	if err != nil {
		return nil, sidecarError(ctx, err)
	}

	var result whisperResponse
	if err := httpclient.DecodeJSON(httpResp, &result); err != nil {
		return nil, sidecarError(ctx, err)
	}

	resp := toResponse(&result)
	resp.TranscriptPath = req.OutputPath
	if err := transcription.WriteMarkdown(req.OutputPath, req, resp); err != nil {
		return nil, errors.Internal(err)
	}
	return resp, nil
}

// sidecarError keeps operator cancellation distinct from sidecar failures.
func sidecarError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.Canceled) {
		return errors.Canceled(ProviderName, ctx.Err())
	}
	return errors.ToolFailed(ProviderName, -1, err)
}

// IsRetryable reports whether a failed Execute may succeed on another attempt.
func IsRetryable(err error) bool {
	return httpclient.IsRetryable(err)
}

// --- sidecar API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toResponse(resp *whisperResponse) *transcription.Response {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}

	var duration float64
	if len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.Response{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}
