package gemini

import "lumina/internal/services/editor"

func editorBuffer(title, content string) editor.Buffer {
	return editor.Buffer{Title: title, Content: content}
}
