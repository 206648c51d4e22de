// Package experience loads and normalizes experience bank files before they are imported.
package experience

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// LoadExperienceBank reads an experience bank JSON file
func LoadExperienceBank(path string) (*types.ExperienceBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read file %s", path), Cause: err}
	}
	defer f.Close()

	return DecodeExperienceBank(f)
}

// DecodeExperienceBank decodes one bank from r. Unknown fields are rejected so a
// misspelled key does not silently drop records.
func DecodeExperienceBank(r io.Reader) (*types.ExperienceBank, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var bank types.ExperienceBank
	if err := dec.Decode(&bank); err != nil {
		return nil, &LoadError{Message: "failed to unmarshal JSON", Cause: err}
	}
	return &bank, nil
}
