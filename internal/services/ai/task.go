package ai

import (
	"encoding/base64"
	"fmt"
	"strings"

	"lumina/internal/services/editor"
)

// Task names an AI action.
type Task string

const (
	TaskSummarize Task = "SUMMARIZE"
	TaskRefine    Task = "REFINE"
	TaskTags      Task = "TAGS"
	TaskContinue  Task = "CONTINUE"
	TaskOCR       Task = "OCR"
)

// Tasks lists every supported task.
var Tasks = []Task{TaskSummarize, TaskRefine, TaskTags, TaskContinue, TaskOCR}

// ParseTask accepts a task name in any case.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Tasks {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
}

const (
	defaultImageMIME = "image/jpeg"
	ocrInstruction   = "Transcribe all visible text from this image accurately. If it's a note or handwriting, keep the structure."
)

// Generation parameters applied to every request.
const (
	Temperature float32 = 0.7
	TopP        float32 = 0.9
)

// Image is an inline image attached to an OCR request.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURL decodes "data:<mime>;base64,<payload>". A bare base64
// payload is accepted as JPEG.
func ParseDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, ErrImageRequired
	}

	mime := defaultImageMIME
	payload := s
	if head, data, ok := strings.Cut(s, ","); ok {
		payload = data
		head = strings.TrimPrefix(head, "data:")
		head = strings.TrimSuffix(head, ";base64")
		if head != "" {
			mime = head
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Image{}, ErrImageRequired
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// Part is one element of a request: text or inline bytes.
type Part struct {
	Text   string
	Inline *Image
}

// Request is a provider-neutral generation request.
type Request struct {
	Parts       []Part
	Temperature float32
	TopP        float32
}

// BuildRequest renders the prompt for task from the buffer.
func BuildRequest(task Task, b editor.Buffer, img *Image) (Request, error) {
	req := Request{Temperature: Temperature, TopP: TopP}

	switch task {
	case TaskSummarize:
		req.Parts = []Part{{Text: "Summarize the following note concisely while keeping key information: \n\nTitle: " + b.Title + "\nContent: " + b.Content}}
	case TaskRefine:
		req.Parts = []Part{{Text: "Rewrite and refine this note to be more professional, clear, and grammatically correct. Keep the original intent: \n\n" + b.Content}}
	case TaskTags:
		req.Parts = []Part{{Text: "Suggest 3-5 relevant short tags for this note based on its content. Return ONLY a comma-separated list of words: \n\nTitle: " + b.Title + "\nContent: " + b.Content}}
	case TaskContinue:
		req.Parts = []Part{{Text: "Based on this note, write a natural continuation or next steps: \n\nTitle: " + b.Title + "\nContent: " + b.Content}}
	case TaskOCR:
		if img == nil || len(img.Data) == 0 {
			return Request{}, ErrImageRequired
		}
		req.Parts = []Part{{Inline: img}, {Text: ocrInstruction}}
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	return req, nil
}

// ApplyResult merges generated text into the buffer according to task.
func ApplyResult(task Task, b *editor.Buffer, text string) {
	switch task {
	case TaskTags:
		b.Tags = mergeTags(b.Tags, text)
	case TaskOCR:
		if b.Content == "" {
			b.Content = text
		} else {
			b.Content += "\n" + text
		}
	default:
		b.Content += "\n\n--- AI " + string(task) + " ---\n" + text
	}
}
