// Package imageurl predicts the URLs of resized image variants produced by the
// storage resize pipeline and falls back to the original asset when a variant
// is not reachable.
package imageurl

import (
	"net/url"
	"regexp"
	"strings"
)

// Size identifies a display variant of an uploaded image.
type Size string

const (
	SizeThumbnail Size = "thumbnail"
	SizeCard      Size = "card"
	SizeFull      Size = "full"
	SizeOriginal  Size = "original"
)

const (
	firebaseHost = "firebasestorage.googleapis.com"
	gcsHost      = "storage.googleapis.com"

	defaultFirebaseQuery = "alt=media"
)

var dimensions = map[Size]string{
	SizeThumbnail: "200x200",
	SizeCard:      "480x480",
	SizeFull:      "1200x1200",
}

// ResizedSizes lists the sizes that map to a resized variant, smallest first.
var ResizedSizes = []Size{SizeThumbnail, SizeCard, SizeFull}

var (
	// a #fragment never belongs to the object path or query and is dropped
	firebasePattern = regexp.MustCompile(`/b/([^/]+)/o/([^?#]+)(?:\?([^#]*))?(?:#.*)?$`)
	gcsPattern      = regexp.MustCompile(`storage\.googleapis\.com/([^/]+)/([^?#]+)`)
	suffixPattern   = regexp.MustCompile(`_(\d+)x(\d+)(\.[^./]*)?$`)
)

// ParseSize maps a size token onto a Size. Only the four known tokens are accepted.
func ParseSize(s string) (Size, bool) {
	switch Size(strings.TrimSpace(s)) {
	case SizeThumbnail:
		return SizeThumbnail, true
	case SizeCard:
		return SizeCard, true
	case SizeFull:
		return SizeFull, true
	case SizeOriginal:
		return SizeOriginal, true
	}
	return "", false
}

// Dimensions returns the WIDTHxHEIGHT suffix of the size. Original and unknown
// sizes have none.
func (s Size) Dimensions() (string, bool) {
	d, ok := dimensions[s]
	return d, ok
}

type shape int

const (
	shapeNone shape = iota
	shapeFirebase
	shapeGCS
)

// location is an asset URL broken down into the parts needed to rebuild it.
type location struct {
	shape  shape
	bucket string
	path   string // decoded object path
	query  string // firebase only
}

// reason explains why a URL was passed through untouched.
type reason string

const (
	reasonNone        reason = ""
	reasonEmpty       reason = "empty url"
	reasonOriginal    reason = "original size requested"
	reasonUnknownSize reason = "unknown size"
	reasonForeignHost reason = "unrecognized host"
	reasonNoMatch     reason = "path extraction failed"
	reasonBadEncoding reason = "path decoding failed"
	reasonNoSuffix    reason = "no resize suffix"
)

func parseLocation(raw string) (location, reason) {
	switch {
	// firebasestorage.googleapis.com contains storage.googleapis.com, so it goes first.
	case strings.Contains(raw, firebaseHost):
		m := firebasePattern.FindStringSubmatch(raw)
		if m == nil {
			return location{}, reasonNoMatch
		}
		decoded, err := url.PathUnescape(m[2])
		if err != nil {
			return location{}, reasonBadEncoding
		}
		query := m[3]
		if query == "" {
			query = defaultFirebaseQuery
		}
		return location{shape: shapeFirebase, bucket: m[1], path: decoded, query: query}, reasonNone
	case strings.Contains(raw, gcsHost):
		m := gcsPattern.FindStringSubmatch(raw)
		if m == nil {
			return location{}, reasonNoMatch
		}
		decoded, err := url.PathUnescape(m[2])
		if err != nil {
			return location{}, reasonBadEncoding
		}
		return location{shape: shapeGCS, bucket: m[1], path: decoded}, reasonNone
	}
	return location{}, reasonForeignHost
}

func (l location) String() string {
	switch l.shape {
	case shapeFirebase:
		return "https://" + firebaseHost + "/v0/b/" + l.bucket + "/o/" + encodeURIComponent(l.path) + "?" + l.query
	case shapeGCS:
		return "https://" + gcsHost + "/" + l.bucket + "/" + l.path
	}
	return ""
}

// splitExt splits at the last dot. A path without a dot has an empty extension.
func splitExt(p string) (base, ext string) {
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return p, ""
	}
	return p[:i], p[i+1:]
}

func resizedPath(p, dims string) string {
	base, ext := splitExt(p)
	if ext == "" && !strings.HasSuffix(p, ".") {
		return base + "_" + dims
	}
	return base + "_" + dims + "." + ext
}

// Resolve predicts the URL of the resized variant of originalURL without any
// network access. Every failure returns originalURL unchanged.
func Resolve(originalURL string, size Size) string {
	out, _ := resolve(originalURL, size)
	return out
}

func resolve(originalURL string, size Size) (string, reason) {
	if originalURL == "" {
		return originalURL, reasonEmpty
	}
	if size == SizeOriginal {
		return originalURL, reasonOriginal
	}
	if !strings.Contains(originalURL, gcsHost) {
		return originalURL, reasonForeignHost
	}
	dims, ok := size.Dimensions()
	if !ok {
		return originalURL, reasonUnknownSize
	}
	loc, why := parseLocation(originalURL)
	if why != reasonNone {
		return originalURL, why
	}
	loc.path = resizedPath(loc.path, dims)
	return loc.String(), reasonNone
}

// DeriveOriginal strips the _WIDTHxHEIGHT suffix from a resized variant URL,
// keeping the host shape. URLs without the suffix are returned unchanged.
func DeriveOriginal(resizedURL string) string {
	out, _ := deriveOriginal(resizedURL)
	return out
}

func deriveOriginal(resizedURL string) (string, reason) {
	if resizedURL == "" {
		return resizedURL, reasonEmpty
	}
	loc, why := parseLocation(resizedURL)
	if why != reasonNone {
		return resizedURL, why
	}
	stripped := suffixPattern.ReplaceAllString(loc.path, "$3")
	if stripped == loc.path {
		return resizedURL, reasonNoSuffix
	}
	loc.path = stripped
	return loc.String(), reasonNone
}

// ObjectPath returns the bucket and decoded object path of a storage URL.
func ObjectPath(raw string) (bucket, path string, ok bool) {
	loc, why := parseLocation(raw)
	if why != reasonNone {
		return "", "", false
	}
	return loc.bucket, loc.path, true
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
