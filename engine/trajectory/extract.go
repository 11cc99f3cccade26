package trajectory

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/HenryQuillin/OpenCUA/engine/action"
	"github.com/HenryQuillin/OpenCUA/engine/payload"
	"github.com/HenryQuillin/OpenCUA/pkg/logger"
)

// DefaultTaskIDSentinel is the task_id value some upstream exporters emit
// when a recording has no real task attached. Matching is case-insensitive
// and the value is configurable because it is a data-quality artifact of
// one particular source, not a domain rule.
const DefaultTaskIDSentinel = "agentnet"

// Step pairs a translated action batch with the frame it was performed on.
// The referenced frame is always observed strictly before the step.
type Step struct {
	Index int       `json:"index"`
	Image string    `json:"image"`
	Value StepValue `json:"value"`
}

// StepValue wraps the rendered command sequence.
type StepValue struct {
	Code string `json:"code"`
}

// Normalized is one training-ready trajectory record, serialized as a
// single JSONL line by the driver.
type Normalized struct {
	TaskID            string  `json:"task_id"`
	Instruction       *string `json:"instruction"`
	Traj              []Step  `json:"traj"`
	SourceRecordingID *string `json:"source_recording_id"`
	RawType           *string `json:"raw_type"`
	ImageFolder       string  `json:"image_folder"`
}

// Extractor walks one document's content in order and assembles the
// normalized record. All mutable walk state lives in Extract's locals, so
// one Extractor can serve many documents.
type Extractor struct {
	imagesRoot string
	sentinel   string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTaskIDSentinel overrides the sentinel task_id that forces the
// example-id fallback.
func WithTaskIDSentinel(sentinel string) Option {
	return func(e *Extractor) {
		e.sentinel = sentinel
	}
}

// NewExtractor creates an extractor writing frames under imagesRoot.
func NewExtractor(imagesRoot string, opts ...Option) *Extractor {
	e := &Extractor{
		imagesRoot: imagesRoot,
		sentinel:   DefaultTaskIDSentinel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract converts one document into a normalized record, writing each
// decoded frame to <imagesRoot>/<sanitized id>/<NNNN>.png along the way.
// fallbackID (typically the source file stem) stands in when the document
// carries no example_id. A nil record with nil error means the document
// produced no steps and must be dropped from the output entirely.
//
// A frame that fails to decode or persist aborts the whole document:
// downstream training cannot attribute actions to a frame that was never
// recovered, so a degraded record is worse than none.
func (e *Extractor) Extract(ctx context.Context, doc *Document, fallbackID string) (*Normalized, error) {
	log := logger.FromContext(ctx)
	exampleID := doc.ExampleID
	if exampleID == "" {
		exampleID = fallbackID
	}
	imageFolder := SanitizeName(exampleID)

	var instruction *string
	var lastImageRef string
	imageCounter := 0
	steps := make([]Step, 0)

	for _, item := range doc.Content {
		switch it := item.(type) {
		case *TextObservation:
			if instruction == nil && (it.Source == "user" || it.Source == "task") {
				text := it.Text
				instruction = &text
			}
		case *ImageObservation:
			rel, err := e.writeFrame(ctx, imageFolder, imageCounter, it.Payload)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", imageCounter, err)
			}
			lastImageRef = rel
			imageCounter++
		case *ActionBatch:
			if lastImageRef == "" || len(it.Actions) == 0 {
				continue
			}
			code, err := action.Translate(it.Actions)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", len(steps), err)
			}
			steps = append(steps, Step{
				Index: len(steps),
				Image: lastImageRef,
				Value: StepValue{Code: code},
			})
		}
	}

	if len(steps) == 0 {
		log.Debug("trajectory produced no steps, dropping", "example_id", exampleID)
		return nil, nil
	}

	return &Normalized{
		TaskID:            e.resolveTaskID(doc.TaskID, exampleID),
		Instruction:       instruction,
		Traj:              steps,
		SourceRecordingID: optional(doc.ExampleID),
		RawType:           optional(doc.Type),
		ImageFolder:       imageFolder,
	}, nil
}

// writeFrame decodes one payload and persists it, returning the
// slash-separated path relative to the images root.
func (e *Extractor) writeFrame(ctx context.Context, folder string, counter int, raw string) (string, error) {
	data, err := payload.Normalize(raw)
	if err != nil {
		return "", err
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if mime := payload.DetectMIME(head); !payload.IsImage(mime) {
		logger.FromContext(ctx).Warn("decoded frame does not look like an image",
			"folder", folder, "frame", counter, "mime", mime)
	}
	name := fmt.Sprintf("%04d.png", counter)
	if err := payload.WriteFrame(filepath.Join(e.imagesRoot, folder, name), data); err != nil {
		return "", err
	}
	return path.Join(folder, name), nil
}

// resolveTaskID applies the sentinel fallback: an absent task id, or one
// equal to the configured sentinel, is replaced by the example id.
func (e *Extractor) resolveTaskID(taskID, exampleID string) string {
	if taskID == "" || strings.EqualFold(taskID, e.sentinel) {
		return exampleID
	}
	return taskID
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
