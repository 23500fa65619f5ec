package disc

import (
	"errors"
	"fmt"
	"strings"
)

// MediaType identifies the kind of optical medium or directory layout found at
// a path. The zero value is MediaTypeError so an unset result never reads as a
// valid medium.
type MediaType int

const (
	MediaTypeError MediaType = iota
	MediaTypeData
	MediaTypeCDDA
	MediaTypeVCD
	MediaTypeDVD
)

// ErrNoDisplayName is returned by HumanReadableName for MediaTypeError.
var ErrNoDisplayName = errors.New("media type has no display name")

// String returns a stable lowercase token for logs and JSON output.
func (t MediaType) String() string {
	switch t {
	case MediaTypeError:
		return "error"
	case MediaTypeData:
		return "data"
	case MediaTypeCDDA:
		return "cdda"
	case MediaTypeVCD:
		return "vcd"
	case MediaTypeDVD:
		return "dvd"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t MediaType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MediaType) UnmarshalText(text []byte) error {
	parsed, err := ParseMediaType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseMediaType converts a token produced by String back into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return MediaTypeError, nil
	case "data":
		return MediaTypeData, nil
	case "cdda":
		return MediaTypeCDDA, nil
	case "vcd":
		return MediaTypeVCD, nil
	case "dvd":
		return MediaTypeDVD, nil
	}
	return MediaTypeError, fmt.Errorf("unknown media type %q", value)
}

// HumanReadableName returns the display label for a detected medium.
// MediaTypeError has no label; callers must report the diagnostic instead.
func HumanReadableName(t MediaType) (string, error) {
	switch t {
	case MediaTypeData:
		return "Data CD", nil
	case MediaTypeCDDA:
		return "Audio CD", nil
	case MediaTypeVCD:
		return "Video CD", nil
	case MediaTypeDVD:
		return "DVD", nil
	case MediaTypeError:
		return "", ErrNoDisplayName
	default:
		return "", fmt.Errorf("media type %d: %w", int(t), ErrNoDisplayName)
	}
}
