package trajectory

import (
	"encoding/json"
	"fmt"

	"github.com/HenryQuillin/OpenCUA/engine/action"
)

// Item is one entry of a trajectory's content array. Order in the array is
// chronological and semantically meaningful.
type Item interface {
	isItem()
}

// TextObservation is a textual observation, optionally instruction-bearing
// when its source is "user" or "task".
type TextObservation struct {
	Source string
	Text   string
}

// ImageObservation carries one base64-encoded screen frame.
type ImageObservation struct {
	Payload string
}

// ActionBatch is the ordered set of actions performed against the most
// recently observed frame.
type ActionBatch struct {
	Actions []action.Record
}

func (*TextObservation) isItem()  {}
func (*ImageObservation) isItem() {}
func (*ActionBatch) isItem()      {}

const (
	classTextObservation  = "text_observation"
	classImageObservation = "image_observation"
)

// ItemList decodes the heterogeneous content array. Entries are
// discriminated by their "class_" tag, falling back to the presence of a
// "guiactions" key; anything else decodes to nothing and is dropped, the
// same way the recorders' unknown entries always have been.
type ItemList []Item

func (l *ItemList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("content array: %w", err)
	}
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		if item := decodeItem(raw); item != nil {
			items = append(items, item)
		}
	}
	*l = items
	return nil
}

func decodeItem(raw json.RawMessage) Item {
	var probe struct {
		Class      string           `json:"class_"`
		Source     string           `json:"source"`
		Content    string           `json:"content"`
		GUIActions *[]action.Record `json:"guiactions"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		// Non-object entries (or mistyped fields) are skipped, not fatal.
		return nil
	}
	switch probe.Class {
	case classTextObservation:
		return &TextObservation{Source: probe.Source, Text: probe.Content}
	case classImageObservation:
		return &ImageObservation{Payload: probe.Content}
	}
	if probe.GUIActions != nil {
		return &ActionBatch{Actions: *probe.GUIActions}
	}
	return nil
}

// Document is one standardized trajectory as read from disk.
type Document struct {
	ExampleID string   `json:"example_id"`
	TaskID    string   `json:"task_id"`
	Type      string   `json:"type"`
	Content   ItemList `json:"content"`
}
