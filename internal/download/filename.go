package download

import (
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const fallbackFileName = "download"

// FileNameFromResponse prefers the Content-Disposition filename, then the
// last segment of the final request URL.
func FileNameFromResponse(resp *http.Response) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := cleanName(params["filename"]); name != "" {
				return name
			}
		}
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return FileNameFromURL(resp.Request.URL)
	}
	return fallbackFileName
}

// FileNameFromURL returns the last path segment, without the query string.
func FileNameFromURL(u *url.URL) string {
	if name := cleanName(path.Base(u.Path)); name != "" {
		return name
	}
	return fallbackFileName
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "", ".", "..":
		return ""
	}
	return name
}
