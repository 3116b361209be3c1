// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"os"

	"github.com/huangsam/gridline/internal/contract"
	"golang.org/x/term"
)

// WriteRendered writes a rendered artifact (image or page) to outputFile, or stdout when empty.
func WriteRendered(outputFile string, write func(io.Writer) error, successMsg string) error {
	return writeWithFile(outputFile, write, successMsg)
}

// GetMaxTableLabelWidth calculates the maximum width for free-text labels in table output
// based on terminal width and the fixed columns around them.
func GetMaxTableLabelWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 12 {
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}
