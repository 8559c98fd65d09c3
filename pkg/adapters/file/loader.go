// Package file loads data-defined domains from YAML or JSON documents.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/arbor/internal/dto"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/schema"
)

// Extensions lists the file extensions read from a directory.
var Extensions = []string{".yaml", ".yml", ".json"}

// StateFiles lists the file names treated as initial state rather than
// domain documents when scanning a directory.
var StateFiles = []string{"state.yaml", "state.yml", "state.json"}

// CommandFiles lists the operator command bindings skipped when scanning.
var CommandFiles = []string{"commands.yaml", "commands.yml", "commands.json"}

// ErrNoDocuments is returned when a directory holds no domain documents.
var ErrNoDocuments = errors.New("no domain documents found")

// Load compiles the domain at path, which may be a file or a directory.
func Load(path string) (*Bundle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFiles(path)
}

// LoadDir compiles every domain document under dir, in lexical order.
func LoadDir(dir string) (*Bundle, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isDocument(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDocuments)
	}
	sort.Strings(paths)
	return LoadFiles(paths...)
}

// LoadFiles compiles the given documents into one domain.
func LoadFiles(paths ...string) (*Bundle, error) {
	docs := make([]*dto.DomainFile, 0, len(paths))
	var errs []error
	for _, p := range paths {
		doc, err := readDocument(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := schema.Collect(errs); err != nil {
		return nil, err
	}
	return Compile(docs...)
}

// LoadFacts reads an initial state file.
func LoadFacts(path string) (facts.Facts, error) {
	return facts.LoadFile(path)
}

// FindState returns the state file inside dir, if any.
func FindState(dir string) (string, bool) {
	for _, name := range StateFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func readDocument(path string) (*dto.DomainFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func isDocument(name string) bool {
	if slices.Contains(StateFiles, name) || slices.Contains(CommandFiles, name) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
