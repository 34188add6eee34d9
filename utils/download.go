package utils

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// maxDownloadSize limits the size of a remote source image.
const maxDownloadSize = 64 << 20

// DownloadImage fetches a remote source image and returns its raw bytes.
func DownloadImage(uri string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	res, err := client.Get(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to download image file from URI: %s: %w", uri, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download image file from URI: %s, status %v", uri, res.Status)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	if ctype := DetectContentType(data); !IsImage(ctype) {
		return nil, fmt.Errorf("the downloaded file is not a valid image type: %s", ctype)
	}
	return data, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
