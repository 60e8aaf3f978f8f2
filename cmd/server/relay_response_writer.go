package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
)

type relayResponseWriter struct {
	w http.ResponseWriter
}

var _ relay.RelayResponseWriter = (*relayResponseWriter)(nil)

func (w *relayResponseWriter) WriteImage(image compressor.TransformResult) {
	header := w.w.Header()

	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header.Set("Content-Type", contentType)
	setIfPresent(header, "Image-Width", image.Width)
	setIfPresent(header, "Image-Height", image.Height)
	// the body is already buffered, so its real length always wins over the upstream value
	header.Set("Content-Length", strconv.Itoa(len(image.Body)))

	w.w.WriteHeader(http.StatusOK)
	w.w.Write(image.Body)
}

func (w *relayResponseWriter) WriteJSON(code int, body interface{}) {
	writeJSON(w.w, code, body)
}

func (w *relayResponseWriter) WriteProxied(response *http.Response) {
	defer response.Body.Close()

	header := w.w.Header()
	requestID := header.Get(requestIDHeader)

	for key, values := range response.Header {
		if hopByHopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}

		header[key] = values
	}

	setCORSHeaders(header, proxyAllowedMethods)
	if requestID != "" {
		header.Set(requestIDHeader, requestID)
	}

	w.w.WriteHeader(response.StatusCode)
	io.Copy(w.w, response.Body)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Del("Content-Length")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func setIfPresent(header http.Header, key, value string) {
	if value != "" {
		header.Set(key, value)
	}
}

var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}
