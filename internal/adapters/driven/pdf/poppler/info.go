package poppler

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Tools names the poppler programs. Values may be bare names or paths.
type Tools struct {
	PDFInfo   string
	PDFToText string
	PDFToPPM  string
}

// DefaultTools returns the program names as installed by poppler-utils.
func DefaultTools() Tools {
	return Tools{
		PDFInfo:   "pdfinfo",
		PDFToText: "pdftotext",
		PDFToPPM:  "pdftoppm",
	}
}

// withDefaults fills empty fields from DefaultTools.
func (t Tools) withDefaults() Tools {
	d := DefaultTools()
	if t.PDFInfo == "" {
		t.PDFInfo = d.PDFInfo
	}
	if t.PDFToText == "" {
		t.PDFToText = d.PDFToText
	}
	if t.PDFToPPM == "" {
		t.PDFToPPM = d.PDFToPPM
	}
	return t
}

// Info is the subset of pdfinfo output the engines need.
type Info struct {
	Pages     int
	Encrypted bool
}

// probe runs pdfinfo and classifies the document.
func probe(ctx context.Context, runner driven.CommandRunner, tool, path string) (Info, error) {
	out, err := runner.Run(ctx, tool, path)
	if err != nil {
		switch {
		case ctx.Err() != nil, errors.Is(err, domain.ErrToolNotFound):
			return Info{}, err
		case strings.Contains(strings.ToLower(err.Error()), "password"):
			return Info{}, fmt.Errorf("%s: %w", path, domain.ErrEncrypted)
		default:
			return Info{}, fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, path, err)
		}
	}

	info, err := parseInfo(out)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, path, err)
	}
	if info.Encrypted {
		return info, fmt.Errorf("%s: %w", path, domain.ErrEncrypted)
	}
	return info, nil
}

// parseInfo reads "Key: value" lines as printed by pdfinfo.
func parseInfo(out []byte) (Info, error) {
	var info Info
	pagesSeen := false

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Pages":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Info{}, fmt.Errorf("invalid page count %q", value)
			}
			info.Pages = n
			pagesSeen = true
		case "Encrypted":
			info.Encrypted = strings.HasPrefix(value, "yes")
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, err
	}
	if !pagesSeen {
		return Info{}, errors.New("page count missing")
	}
	return info, nil
}
