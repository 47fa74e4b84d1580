package bridge

import (
	"errors"
	"net/http"
)

// ErrCrossOrigin is returned by probes that cannot inspect the parent frame.
var ErrCrossOrigin = errors.New("bridge: parent frame is cross-origin")

// EmbedProbe reports whether the current context is the top-level frame.
type EmbedProbe func() (top bool, err error)

// DetectEmbedded reports whether the caller runs inside a parent frame.
// A probe that fails or panics counts as embedded. A nil probe counts as top-level.
func DetectEmbedded(probe EmbedProbe) (embedded bool) {
	if probe == nil {
		return false
	}

	defer func() {
		if recover() != nil {
			embedded = true
		}
	}()

	top, err := probe()
	if err != nil {
		return true
	}
	return !top
}

// FetchDestProbe inspects the Sec-Fetch-Dest request header a browser sends
// when loading a document. Requests without the header cannot be classified.
func FetchDestProbe(header http.Header) EmbedProbe {
	return func() (bool, error) {
		switch header.Get("Sec-Fetch-Dest") {
		case "":
			return false, ErrCrossOrigin
		case "iframe", "frame", "embed", "object":
			return false, nil
		default:
			return true, nil
		}
	}
}
