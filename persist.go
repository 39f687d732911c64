package productgen

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Persist writes products as an indented JSON array, replacing any
// previous file at path.
func Persist(products []ProductRecord, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if products == nil {
		products = []ProductRecord{}
	}

	if err := enc.Encode(products); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func Load(path string) ([]ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var products []ProductRecord
	if err := json.NewDecoder(f).Decode(&products); err != nil {
		return nil, err
	}

	return products, nil
}
