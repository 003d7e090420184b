package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

const (
	labelsFileName  = "labels.yaml"
	scanFileName    = "scan.yaml"
	programsDirName = "programs"
)

// Load reads every language directory under root and assembles the corpus.
// A language directory is any directory containing an annotation file. Any
// structural problem fails the whole load.
func Load(root string) (*Store, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}

	store := newStore()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		language := entry.Name()
		labelsPath := filepath.Join(root, language, labelsFileName)
		if _, err := os.Stat(labelsPath); errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("stat annotations for %s: %w", language, err)
		}
		if err := loadLanguage(store, root, language); err != nil {
			return nil, err
		}
	}
	if len(store.languages) == 0 {
		return nil, fmt.Errorf("corpus root %s contains no language directories with %s", root, labelsFileName)
	}
	sort.Strings(store.languages)
	return store, nil
}

func loadLanguage(store *Store, root, language string) error {
	labelsPath := filepath.Join(root, language, labelsFileName)
	labelsData, err := os.ReadFile(labelsPath)
	if err != nil {
		return fmt.Errorf("read annotations for %s: %w", language, err)
	}
	parsedLabels, err := parseLabelsFile(labelsData)
	if err != nil {
		return &FormatError{Path: labelsPath, Issues: []Issue{{Field: "document", Message: err.Error()}}}
	}
	labeled, err := normalizeLabels(parsedLabels, labelsPath, language)
	if err != nil {
		return err
	}

	scanPath := filepath.Join(root, language, scanFileName)
	scanData, err := os.ReadFile(scanPath)
	if err != nil {
		return fmt.Errorf("read scan metadata for %s: %w", language, err)
	}
	parsedScan, err := parseScanFile(scanData)
	if err != nil {
		return &FormatError{Path: scanPath, Issues: []Issue{{Field: "document", Message: err.Error()}}}
	}
	records, err := normalizeScan(parsedScan, scanPath)
	if err != nil {
		return err
	}

	collector := &issueCollector{}
	mismatch := &ScanMismatchError{Language: language}
	matched := make(map[string]bool, len(labeled))
	for i, labels := range labeled {
		program := labels.Program
		if _, err := os.Stat(filepath.Join(root, language, program.File)); err != nil {
			collector.add(fmt.Sprintf("programs[%d].file", i), fmt.Sprintf("program file %q is not in the code set", program.File))
			continue
		}
		record, ok := records[program.ID]
		if !ok {
			mismatch.Unscanned = append(mismatch.Unscanned, program.ID)
			continue
		}
		matched[program.ID] = true
		record.File = program.File
		store.add(program, labels.Edges, record)
	}
	if err := collector.result(labelsPath); err != nil {
		return err
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if matched[id] {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, language, records[id].File)); err != nil {
			mismatch.Missing = append(mismatch.Missing, id)
			continue
		}
		mismatch.Unlabeled = append(mismatch.Unlabeled, id)
	}
	if len(mismatch.Missing) > 0 || len(mismatch.Unscanned) > 0 || len(mismatch.Unlabeled) > 0 {
		return mismatch
	}
	return nil
}
