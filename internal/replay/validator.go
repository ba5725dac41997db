package replay

import (
	"fmt"
	"io"
	"os"

	apperrors "github.com/demoscope/demoscope/internal/errors"
)

// Demo containers open with an 8-byte magic: the canonical generation
// writes "PBDEMS2" and the legacy generation "HL2DEMO", both NUL-padded.
const (
	MagicCanonical = "PBDEMS2"
	MagicLegacy    = "HL2DEMO"

	magicSize = 8
)

// ValidateFile cheaply rejects files that cannot be demos before the full
// parse runs. Any error it returns is fatal: a corrupt file will not become
// valid on retry.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.NewInvalidDemoError(fmt.Sprintf("demo file not found: %s", path))
	}
	if err != nil {
		return apperrors.NewInvalidDemoError(fmt.Sprintf("demo file unreadable: %v", err))
	}
	if info.Size() == 0 {
		return apperrors.NewInvalidDemoError("demo file is empty")
	}
	if info.Size() < magicSize {
		return apperrors.NewInvalidDemoError("demo file is truncated before the header")
	}

	magic, err := readMagic(path)
	if err != nil {
		return apperrors.NewInvalidDemoError(fmt.Sprintf("demo header unreadable: %v", err))
	}
	if magic != MagicCanonical && magic != MagicLegacy {
		return apperrors.NewInvalidDemoError(fmt.Sprintf("unrecognized demo signature %q", magic))
	}
	return nil
}

// readMagic returns the file's magic string with NUL padding stripped.
func readMagic(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var header [magicSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return "", err
	}
	end := len(header)
	for end > 0 && header[end-1] == 0 {
		end--
	}
	return string(header[:end]), nil
}
