package landing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// ReadLines reads the file at path and returns its whitespace-trimmed,
// non-empty lines in their original order. "\n", "\r\n" and a lone "\r" all
// end a line, and lines have no length limit. A missing file is reported as
// an error wrapping ErrMissingInputFile.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInputFile, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	var lines []string
	reader := bufio.NewReader(file)
	first := true
	for {
		chunk, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		if first {
			chunk = strings.TrimPrefix(chunk, "\ufeff")
			first = false
		}
		for _, line := range strings.Split(chunk, "\r") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
		if readErr == io.EOF {
			return lines, nil
		}
	}
}

// LoadInputs reads the keyword and photo lists named by config. The keyword
// list is mandatory and must contain at least one line. The photo list is
// optional: when it is missing or empty a warning is logged and no photos are
// returned. Under strict pairing the two lists must have the same length.
func LoadInputs(config *Config, logger *slog.Logger) (keywords, photos []string, err error) {
	keywords, err = ReadLines(config.KeywordListPath)
	if err != nil {
		return nil, nil, err
	}
	if len(keywords) == 0 {
		return nil, nil, fmt.Errorf("%w: no keywords in %s", ErrEmptyInputFile, config.KeywordListPath)
	}

	if config.PhotoListPath != "" {
		photos, err = ReadLines(config.PhotoListPath)
		if err != nil {
			if !errors.Is(err, ErrMissingInputFile) {
				return nil, nil, err
			}
			logger.Warn("Photo list not found, continuing without photos", "path", config.PhotoListPath)
			photos = nil
		}
	}
	if len(photos) == 0 {
		logger.Warn("No photos available, pages will use the placeholder image",
			"path", config.PhotoListPath,
			"placeholder", config.PlaceholderImage)
	}

	if config.Pairing == PairingStrict && len(photos) != len(keywords) {
		return nil, nil, fmt.Errorf("%w: %d keywords, %d photos", ErrLengthMismatch, len(keywords), len(photos))
	}
	return keywords, photos, nil
}

// PhotoIndex returns the index of the photo paired with the keyword at
// position i, or -1 when there are no photos. Under PairingWrap indices wrap
// around; under PairingStrict i must be below photoCount, which LoadInputs
// guarantees.
func PhotoIndex(i, photoCount int, pairing string) int {
	if photoCount <= 0 {
		return -1
	}
	if pairing == PairingStrict {
		if i >= photoCount {
			return -1
		}
		return i
	}
	return i % photoCount
}
