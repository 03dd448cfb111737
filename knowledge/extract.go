// Package knowledge turns uploaded files into knowledge items: plain-text
// content attributed to a named source document. PDF extraction is delegated
// to an external library; everything else is read as UTF-8 text.
package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"aide/model"
)

// extractConcurrency bounds how many files are processed at once.
const extractConcurrency = 4

// FileError reports a single file that could not be turned into a knowledge
// item. Extraction failures are per-file and never abort the batch.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// ExtractAll extracts text from every path concurrently and fans the results
// back in. Partial success is the normal case: usable items are returned in
// the input order alongside the per-file failures. The error return is
// reserved for context cancellation.
func ExtractAll(ctx context.Context, paths []string) ([]model.KnowledgeItem, []FileError, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}

	items := make([]*model.KnowledgeItem, len(paths))
	var mu sync.Mutex
	var failures []FileError

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(extractConcurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			item, err := ExtractFile(path)
			if err != nil {
				mu.Lock()
				failures = append(failures, FileError{Name: filepath.Base(path), Err: err})
				mu.Unlock()
				return nil
			}

			items[i] = &item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var out []model.KnowledgeItem
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}

	return out, failures, nil
}

// ExtractFile extracts the text content of one file. The item is usable only
// when its content is non-empty after whitespace trimming; anything else is
// an error and the file is dropped from the upload.
func ExtractFile(path string) (model.KnowledgeItem, error) {
	name := filepath.Base(path)

	var content string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		content, err = extractPDF(path)
	} else {
		content, err = extractText(path)
	}
	if err != nil {
		return model.KnowledgeItem{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return model.KnowledgeItem{}, fmt.Errorf("no text content after extraction")
	}

	return model.KnowledgeItem{Name: name, Content: content}, nil
}

func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.ContainsRune(data, 0) {
		return "", fmt.Errorf("file is not plain text")
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, reader); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return b.String(), nil
}
