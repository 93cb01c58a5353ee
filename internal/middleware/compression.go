package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
)

// CompressionMiddleware provides response compression
func CompressionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if client accepts gzip encoding
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		// Check if response should be compressed based on content type
		if !shouldCompress(r) {
			next.ServeHTTP(w, r)
			return
		}

		// Create gzip writer
		gz := gzip.NewWriter(w)
		defer gz.Close()

		// Wrap response writer
		gzw := &gzipResponseWriter{
			ResponseWriter: w,
			Writer:         gz,
		}

		// Set compression headers
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")

		// Serve the request with compression
		next.ServeHTTP(gzw, r)
	})
}

// gzipResponseWriter wraps http.ResponseWriter with gzip compression
type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

// Write compresses and writes data
func (gzw *gzipResponseWriter) Write(data []byte) (int, error) {
	return gzw.Writer.Write(data)
}

// shouldCompress determines if the request should be compressed
func shouldCompress(r *http.Request) bool {
	// Don't compress if already compressed
	if r.Header.Get("Content-Encoding") != "" {
		return false
	}

	path := r.URL.Path

	// PDF downloads are already compressed
	if strings.HasSuffix(path, ".pdf") {
		return false
	}

	// Compress API responses
	if strings.HasPrefix(path, "/api/") {
		return true
	}

	// Compress text assets
	if strings.HasSuffix(path, ".js") ||
		strings.HasSuffix(path, ".css") ||
		strings.HasSuffix(path, ".html") ||
		strings.HasSuffix(path, ".json") ||
		strings.HasSuffix(path, ".xml") ||
		strings.HasSuffix(path, ".txt") {
		return true
	}

	// Don't compress images, videos, or already compressed files
	if strings.HasSuffix(path, ".jpg") ||
		strings.HasSuffix(path, ".jpeg") ||
		strings.HasSuffix(path, ".png") ||
		strings.HasSuffix(path, ".gif") ||
		strings.HasSuffix(path, ".webp") ||
		strings.HasSuffix(path, ".mp4") ||
		strings.HasSuffix(path, ".zip") ||
		strings.HasSuffix(path, ".gz") {
		return false
	}

	return true
}
