package openwebif

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// MessageType is the severity class of an on-screen message.
type MessageType int

// Message severity classes defined by OpenWebif.
const (
	MessageYesNo     MessageType = 0
	MessageInfo      MessageType = 1
	MessageText      MessageType = 2
	MessageAttention MessageType = 3
)

// Ack is the acknowledgement the receiver returns for command endpoints
// (remote control, zap, message). OK mirrors the receiver's boolean result
// flag; Text carries the human-readable result text.
type Ack struct {
	OK   bool
	Text string
}

// AudioTrack describes one audio track of the currently playing service.
type AudioTrack struct {
	// Description is the human-readable track label (e.g. "Deutsch (AC3)").
	Description string `json:"description"`

	// ID is the track's logical identifier.
	ID int `json:"id"`

	// PID is the track's physical (transport stream) identifier.
	PID int `json:"pid"`

	// Active reports whether the track is currently selected.
	Active bool `json:"active"`
}

// Event is a single EPG event record.
type Event struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	DescriptionExtended string `json:"description_extended"`
}

// parseAck extracts a command acknowledgement from a response body.
// The receiver uses two tag pairs for the same shape: e2result/e2resulttext
// on command endpoints and e2state/e2statetext on zap and message-answer.
func parseAck(data []byte, stateTag, textTag string) (Ack, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return Ack{}, err
	}

	var ack Ack
	if state, ok := doc.Value(stateTag); ok {
		ack.OK = isTrue(state)
	}
	if text, ok := doc.Value(textTag); ok {
		ack.Text = text
	}
	return ack, nil
}

// isTrue normalises the receiver's boolean spellings. OpenWebif responses
// mix "True" and "true" across endpoints; anything else is false.
func isTrue(s string) bool {
	return s == "true" || s == "True"
}

// parseAudioTracks decodes a getaudiotracks response.
func parseAudioTracks(data []byte) ([]AudioTrack, error) {
	var list struct {
		XMLName xml.Name `xml:"e2audiotracklist"`
		Tracks  []struct {
			Description string `xml:"e2audiotrackdescription"`
			ID          string `xml:"e2audiotrackid"`
			PID         string `xml:"e2audiotrackpid"`
			Active      string `xml:"e2audiotrackactive"`
		} `xml:"e2audiotrack"`
	}

	if err := xml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	tracks := make([]AudioTrack, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		track := AudioTrack{
			Description: strings.TrimSpace(t.Description),
			Active:      isTrue(strings.TrimSpace(t.Active)),
		}
		if id, err := strconv.Atoi(strings.TrimSpace(t.ID)); err == nil {
			track.ID = id
		}
		if pid, err := strconv.Atoi(strings.TrimSpace(t.PID)); err == nil {
			track.PID = pid
		}
		tracks = append(tracks, track)
	}

	return tracks, nil
}

// parseFirstEvent decodes an epgservice response and returns its first
// event record.
func parseFirstEvent(data []byte) (Event, bool, error) {
	var list struct {
		XMLName xml.Name `xml:"e2eventlist"`
		Events  []struct {
			Title               string `xml:"e2eventtitle"`
			Description         string `xml:"e2eventdescription"`
			DescriptionExtended string `xml:"e2eventdescriptionextended"`
		} `xml:"e2event"`
	}

	if err := xml.Unmarshal(data, &list); err != nil {
		return Event{}, false, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if len(list.Events) == 0 {
		return Event{}, false, nil
	}

	first := list.Events[0]
	return Event{
		Title:               strings.TrimSpace(first.Title),
		Description:         strings.TrimSpace(first.Description),
		DescriptionExtended: strings.TrimSpace(first.DescriptionExtended),
	}, true, nil
}
