// Package catalog embeds the curated fallback program lists served when a
// live source cannot be reached. Each list is validated against a JSON
// schema at load time so a bad edit fails fast at startup instead of
// producing malformed recommendations.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"funding-advisor/internal/models"
)

//go:embed schema.json business_finland.json ely.json finnvera.json ai_discovery.json
var files embed.FS

// Load returns the validated fallback catalog for source.
func Load(source models.Source) ([]models.FundingProgram, error) {
	raw, err := files.ReadFile(string(source) + ".json")
	if err != nil {
		return nil, fmt.Errorf("no fallback catalog for source %q: %w", source, err)
	}

	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("fallback catalog for source %q is invalid: %w", source, err)
	}

	var programs []models.FundingProgram
	if err := json.Unmarshal(raw, &programs); err != nil {
		return nil, fmt.Errorf("fallback catalog for source %q: %w", source, err)
	}
	return programs, nil
}

func validate(raw []byte) error {
	schema, err := files.ReadFile("schema.json")
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("schema violation: %v", result.Errors())
	}
	return nil
}
