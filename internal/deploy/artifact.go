package deploy

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// ArtifactFile is the name the hosted container loads the model from.
const ArtifactFile = "model.bin"

// PackageModel wraps the model file in the model.tar.gz layout the hosting
// service unpacks into the container's model directory.
func PackageModel(modelPath string) ([]byte, error) {
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	hdr := &tar.Header{
		Name:    ArtifactFile,
		Mode:    0o644,
		Size:    int64(len(raw)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, fmt.Errorf("tar header: %w", err)
	}
	if _, err := tw.Write(raw); err != nil {
		return nil, fmt.Errorf("tar body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseS3Path extracts bucket and key from an "s3://bucket/path/to/file" URI.
func parseS3Path(s3Path string) (bucket, key string, err error) {
	u, err := url.Parse(s3Path)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 path %q: %w", s3Path, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("expected s3:// scheme, got %q in %q", u.Scheme, s3Path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("empty key in S3 path %q", s3Path)
	}
	return bucket, key, nil
}
