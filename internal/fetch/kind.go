package fetch

import (
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Kind is the declared or detected format of an input.
type Kind string

const (
	KindAuto Kind = "auto"
	KindText Kind = "text"
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

// ParseKind validates a kind name; an empty name means KindAuto.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindText, KindJSON, KindHTML:
		return k, nil
	default:
		return "", fmt.Errorf("unknown input type %q (want auto, text, json or html)", s)
	}
}

// ResolveKind returns declared unless it is KindAuto, in which case the kind
// is detected once from the reference's extension, then the HTTP content
// type, then by sniffing the content.
func ResolveKind(doc *Document, declared Kind) Kind {
	if declared != KindAuto && declared != "" {
		return declared
	}

	if k, ok := kindFromExtension(doc.Ref); ok {
		slog.Debug("Input type from extension", "ref", doc.Ref, "kind", k)
		return k
	}
	if k, ok := kindFromMediaType(doc.ContentType); ok {
		slog.Debug("Input type from content type", "ref", doc.Ref, "kind", k, "contentType", doc.ContentType)
		return k
	}

	k := sniff(doc.Body)
	slog.Debug("Input type from content sniffing", "ref", doc.Ref, "kind", k)
	return k
}

func kindFromExtension(ref string) (Kind, bool) {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		p = u.Path
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return KindJSON, true
	case ".html", ".htm", ".xhtml":
		return KindHTML, true
	case ".txt", ".text", ".md", ".markdown":
		return KindText, true
	}
	return "", false
}

func kindFromMediaType(contentType string) (Kind, bool) {
	if contentType == "" {
		return "", false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return KindJSON, true
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return KindHTML, true
	case mediaType == "text/plain" || mediaType == "text/markdown":
		return KindText, true
	}
	return "", false
}

// sniff detects JSON and HTML content; anything else is read as text.
func sniff(body []byte) Kind {
	for m := mimetype.Detect(body); m != nil; m = m.Parent() {
		switch {
		case m.Is("application/json"):
			return KindJSON
		case m.Is("text/html"):
			return KindHTML
		}
	}
	return KindText
}
