package history

import (
	"time"

	"github.com/GNOME/totem-sub005/internal/disc"
)

// Source records what triggered a classification.
type Source string

const (
	SourceCLI     Source = "cli"
	SourceNetlink Source = "netlink"
	SourceStartup Source = "startup"
)

// Entry is one stored classification outcome. Error is set exactly when
// MediaType is disc.MediaTypeError.
type Entry struct {
	ID         string         `json:"id"`
	Device     string         `json:"device"`
	Source     Source         `json:"source"`
	MediaType  disc.MediaType `json:"media_type"`
	MRL        string         `json:"mrl,omitempty"`
	Error      string         `json:"error,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

// NewEntry builds an entry from a classification result.
func NewEntry(device string, source Source, result disc.Result, err error) Entry {
	entry := Entry{
		Device:    device,
		Source:    source,
		MediaType: result.Type,
		MRL:       result.MRL,
	}
	if err != nil {
		entry.MediaType = disc.MediaTypeError
		entry.MRL = ""
		entry.Error = err.Error()
	}
	return entry
}
