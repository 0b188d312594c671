// Package gzippedhttp lets clients send gzip-compressed request bodies.
// Response compression is left to chi's Compress middleware.
package gzippedhttp

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

// CompressedReader decompresses a gzip request body and closes both streams.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func NewCompressedReader(requestBody io.ReadCloser) (*CompressedReader, error) {
	zr, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{
		r:  requestBody,
		zr: zr,
	}, nil
}

func (c *CompressedReader) Read(p []byte) (n int, err error) {
	return c.zr.Read(p)
}

func (c *CompressedReader) Close() error {
	if err := c.zr.Close(); err != nil {
		_ = c.r.Close()
		return err
	}
	return c.r.Close()
}

// UngzipRequest swaps the body of a request sent with
// "Content-Encoding: gzip" for its decompressed stream.
// A body that is not valid gzip is rejected with 400.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		body, err := NewCompressedReader(request.Body)
		if err != nil {
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(response).Encode(models.ErrorResponse{
				Error:   http.StatusText(http.StatusBadRequest),
				Message: "request body is not valid gzip",
			})
			return
		}
		defer body.Close()

		request.Body = body
		request.Header.Del("Content-Encoding")
		request.ContentLength = -1

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
