package sink

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/jadenpxrk/fileconcat/internal/render"
)

// ErrNoClipboard is returned when the platform has no clipboard utility.
var ErrNoClipboard = errors.New("no clipboard utility available")

var writeClipboard = clipboard.WriteAll

// Clipboard copies the rendered document to the system clipboard.
func Clipboard(doc render.Document) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	if err := writeClipboard(render.Render(doc)); err != nil {
		return fmt.Errorf("error writing to clipboard: %w", err)
	}
	return nil
}
