package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// referenceFile mirrors the YAML schema of a reference tables file:
//
//	default_distribution: [100, 250, 500]
//	categories:
//	  mobile-tablet: [3500, 4500, 5900]
//	region_multipliers:
//	  bangkok: 1.15
type referenceFile struct {
	DefaultDistribution []float64            `yaml:"default_distribution"`
	Categories          map[string][]float64 `yaml:"categories"`
	RegionMultipliers   map[string]float64   `yaml:"region_multipliers"`
}

// ReferenceTables is a parsed reference tables file.
type ReferenceTables struct {
	Reference           *MemoryReference
	DefaultDistribution []float64
}

// LoadReferenceFile reads a reference tables file and layers it over the
// built-in tables. Categories and regions named in the file replace the
// built-in entries of the same name.
func LoadReferenceFile(path string) (*ReferenceTables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reference: read %q: %w", path, err)
	}
	return ParseReferenceTables(raw)
}

// ParseReferenceTables decodes reference tables from YAML.
func ParseReferenceTables(raw []byte) (*ReferenceTables, error) {
	var f referenceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("reference: decode yaml: %w", err)
	}

	for category, prices := range f.Categories {
		for _, p := range prices {
			if p < 0 {
				return nil, fmt.Errorf("reference: category %q has negative price %v", category, p)
			}
		}
	}
	for region, m := range f.RegionMultipliers {
		if m <= 0 {
			return nil, fmt.Errorf("reference: region %q has non-positive multiplier %v", region, m)
		}
	}

	multipliers := make(map[string]float64, len(builtinRegionMultipliers)+len(f.RegionMultipliers))
	for k, v := range builtinRegionMultipliers {
		multipliers[k] = v
	}
	for k, v := range f.RegionMultipliers {
		multipliers[categoryKey(k)] = v
	}

	ref := NewMemoryReferenceFrom(builtinDistributions, multipliers)
	for k, v := range f.Categories {
		ref.SetDistribution(k, v)
	}

	return &ReferenceTables{
		Reference:           ref,
		DefaultDistribution: f.DefaultDistribution,
	}, nil
}
