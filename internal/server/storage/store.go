// Package storage keeps diary media in S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// Object is a stored media object.
type Object struct {
	// URL is the public address clients embed in diary entries.
	URL string
	// Name is the object key inside the bucket.
	Name string
}

// ObjectStore is the subset of object storage the diary needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

// OwnerPrefix is the key prefix under which an owner's uploads are stored.
func OwnerPrefix(ownerID string) string {
	return "diary/" + ownerID + "/"
}

// ObjectKeyFromURL extracts the object key from a media URL. The query string
// is ignored and a leading bucket segment is dropped for path-style URLs.
// It reports false when no key can be derived.
func ObjectKeyFromURL(rawURL, bucket string) (string, bool) {
	_, key, ok := ParseObjectURL(rawURL, bucket)
	return key, ok
}

// ParseObjectURL is ObjectKeyFromURL that also returns the URL host.
func ParseObjectURL(rawURL, bucket string) (host, key string, ok bool) {
	rawURL, _, _ = strings.Cut(strings.TrimSpace(rawURL), "?")
	if rawURL == "" {
		return "", "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}

	key = strings.TrimPrefix(u.Path, "/")
	if bucket != "" {
		if rest, found := strings.CutPrefix(key, bucket+"/"); found {
			key = rest
		}
	}
	if key == "" {
		return "", "", false
	}
	return strings.ToLower(u.Host), key, true
}

// EndpointHost returns the lower-cased host of an endpoint URL, or "" when
// it has none.
func EndpointHost(endpoint string) string {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// PublicURL joins base, bucket and key into a path-style URL.
func PublicURL(base, bucket, key string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + key
}
