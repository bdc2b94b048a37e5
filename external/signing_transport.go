// SigV4 signing transport for AWS-hosted OpenAI-compatible backends.
//
// Wrap it in an http.Client and pass that as ClientConfig.HTTPClient when the
// backend sits behind Bedrock (or any SigV4-authenticated gateway) instead of
// a bearer key.
package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

const (
	defaultSigningRegion  = "us-east-1"
	defaultSigningService = "bedrock"
)

// SigningTransport is an http.RoundTripper that signs requests with AWS SigV4.
type SigningTransport struct {
	credentials aws.CredentialsProvider
	region      string
	service     string
	signer      *v4.Signer
	base        http.RoundTripper
	now         func() time.Time
}

// NewSigningTransport loads credentials from the standard AWS chain and
// verifies they can be retrieved.
func NewSigningTransport(ctx context.Context, region string, base http.RoundTripper) (*SigningTransport, error) {
	if region == "" {
		region = defaultSigningRegion
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	return NewSigningTransportWithCredentials(cfg.Credentials, region, defaultSigningService, base), nil
}

// NewSigningTransportWithCredentials builds a transport from an explicit
// credentials provider. Empty region/service fall back to us-east-1/bedrock;
// nil base uses http.DefaultTransport.
func NewSigningTransportWithCredentials(creds aws.CredentialsProvider, region, service string, base http.RoundTripper) *SigningTransport {
	if region == "" {
		region = defaultSigningRegion
	}
	if service == "" {
		service = defaultSigningService
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &SigningTransport{
		credentials: creds,
		region:      region,
		service:     service,
		signer:      v4.NewSigner(),
		base:        base,
		now:         time.Now,
	}
}

// RoundTrip signs a clone of the request and forwards it.
func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body for signing: %w", err)
		}
	}

	signed := req.Clone(req.Context())
	if req.Body != nil {
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}

	creds, err := t.credentials.Retrieve(req.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	payloadHash := fmt.Sprintf("%x", sha256.Sum256(body))
	if err := t.signer.SignHTTP(req.Context(), creds, signed, payloadHash, t.service, t.region, t.now()); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	return t.base.RoundTrip(signed)
}
