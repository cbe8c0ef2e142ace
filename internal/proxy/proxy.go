// Package proxy is the serverless function that forwards a CSV payload to the
// hosted endpoint and wraps the endpoint's reply.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
)

// RuntimeAPI is the subset of the runtime client used by the proxy.
type RuntimeAPI interface {
	InvokeEndpoint(ctx context.Context, in *sagemakerruntime.InvokeEndpointInput, optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// Event is the inbound request.
type Event struct {
	Payload string `json:"payload"`
}

// Response is the fixed-shape reply envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Proxy forwards events to one endpoint.
type Proxy struct {
	runtime      RuntimeAPI
	endpointName string
	contentType  string
	logger       *slog.Logger
}

// New returns a proxy bound to endpointName.
func New(runtime RuntimeAPI, endpointName, contentType string, logger *slog.Logger) *Proxy {
	if contentType == "" {
		contentType = "text/csv"
	}
	return &Proxy{runtime: runtime, endpointName: endpointName, contentType: contentType, logger: logger}
}

// Handle invokes the endpoint with the event payload and returns its decoded
// body under "prediction" with status 200. An SDK error is returned as is.
func (p *Proxy) Handle(ctx context.Context, event Event) (Response, error) {
	out, err := p.runtime.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(p.endpointName),
		ContentType:  aws.String(p.contentType),
		Body:         []byte(event.Payload),
	})
	if err != nil {
		p.logger.Error("invoke endpoint failed", "endpoint", p.endpointName, "error", err)
		return Response{}, err
	}
	result := string(out.Body)
	body, err := predictionBody(result)
	if err != nil {
		return Response{}, fmt.Errorf("encode body: %w", err)
	}
	p.logger.Debug("invoked endpoint", "endpoint", p.endpointName, "bytes", len(out.Body))
	return Response{StatusCode: http.StatusOK, Body: body}, nil
}

// predictionBody renders {"prediction": "<result>"} with a space after the
// colon, the separator style clients of this function already parse.
func predictionBody(result string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	quoted := bytes.TrimRight(buf.Bytes(), "\n")
	return `{"prediction": ` + string(quoted) + `}`, nil
}
