package proxy

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"imposter-proxy-go/internal/model"
)

// normalize drains the raw response into a ResponseRecord. start is the
// dispatch instant; the delta up to full body receipt becomes
// ProxyResponseTime in whole milliseconds. The whole body is buffered
// before the record is produced; nothing streams to the caller.
func normalize(resp *http.Response, start time.Time) (*model.ResponseRecord, error) {
	defer func() { _ = resp.Body.Close() }()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read destination response: %w", err)
	}
	elapsed := time.Since(start).Milliseconds()

	headers := make(model.FieldValues, len(resp.Header))
	for name, vals := range resp.Header {
		for _, v := range vals {
			headers.Add(name, v)
		}
	}

	rec := &model.ResponseRecord{
		StatusCode:        resp.StatusCode,
		Headers:           headers,
		ProxyResponseTime: elapsed,
	}
	if isBinary(headers) {
		rec.Mode = model.ModeBinary
		rec.Body = base64.StdEncoding.EncodeToString(buf)
	} else {
		rec.Mode = model.ModeText
		rec.Body = string(buf)
	}
	return rec, nil
}

// binaryTypePrefixes lists content-type families always treated as binary.
var binaryTypePrefixes = []string{"audio", "image", "video"}

// isBinary classifies the payload: gzip-encoded responses, octet streams,
// and audio/image/video content are binary; everything else is text.
func isBinary(headers model.FieldValues) bool {
	if strings.Contains(headers.Get("Content-Encoding"), "gzip") {
		return true
	}
	contentType := headers.Get("Content-Type")
	if contentType == "application/octet-stream" {
		return true
	}
	for _, prefix := range binaryTypePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}
