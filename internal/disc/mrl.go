package disc

import (
	"net/url"
	"strings"
)

// MRL schemes produced by the classifier.
const (
	SchemeDVD  = "dvd"
	SchemeVCD  = "vcd"
	SchemeCDDA = "cdda"
)

// MRLFromType joins a scheme and a local path into "<scheme>://<path>".
// scheme is a bare token such as SchemeDVD and is used exactly as given, so
// distinct inputs never collapse into one MRL. A file:// URI is reduced to its
// local path first, so "file:///mnt/dvd" and "/mnt/dvd" produce the same MRL.
func MRLFromType(scheme, path string) string {
	return scheme + "://" + localPath(path)
}

func localPath(path string) string {
	if !strings.HasPrefix(path, "file://") {
		return path
	}
	u, err := url.Parse(path)
	if err != nil || u.Path == "" {
		return strings.TrimPrefix(path, "file://")
	}
	return u.Path
}

// schemeFor returns the MRL scheme for media types that support one.
func schemeFor(t MediaType) (string, bool) {
	switch t {
	case MediaTypeDVD:
		return SchemeDVD, true
	case MediaTypeVCD:
		return SchemeVCD, true
	}
	return "", false
}
