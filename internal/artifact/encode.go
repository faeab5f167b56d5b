package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects an artifact encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatMsgpack:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported format %q (must be text, json or msgpack)", s)
}

// Ext is the file extension used for format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMsgpack:
		return ".mp"
	default:
		return ".txt"
	}
}

// Encode writes a in format. Text output is plain; use WriteText for styling.
func Encode(w io.Writer, a *Artifact, format Format, sections Section) error {
	filtered := a.Filter(sections)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(filtered)
	case FormatText, "":
		return WriteText(w, filtered, TextOptions{Sections: sections})
	}
	return fmt.Errorf("unsupported format %q", format)
}

// Decode reads an artifact written by Encode in JSON or MessagePack.
func Decode(r io.Reader, format Format) (*Artifact, error) {
	var a Artifact
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("decode json artifact: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("decode msgpack artifact: %w", err)
		}
	default:
		return nil, fmt.Errorf("format %q cannot be decoded", format)
	}
	return &a, nil
}
