package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"calsync/internal/domain"
)

// rulesFile is the on-disk shape of the exclusion rules document:
//
//	exclusions:
//	  - title: "Физкультура"
//	  - title: "Алгебра"
//	    teacher: "Иванов"
//	    weekday: "вторник"
//	    start_time: "18:30"
type rulesFile struct {
	Exclusions []domain.ExclusionRule `yaml:"exclusions"`
}

// LoadRules reads exclusion rules from a YAML file. An empty path means no
// rules. A rule without a title is rejected so that a half-filled entry can
// never silently exclude everything.
func LoadRules(path string) ([]domain.ExclusionRule, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("config: parse rules %s: %w", path, err)
	}
	for i, r := range f.Exclusions {
		if r.Title == "" {
			return nil, fmt.Errorf("config: rule #%d in %s has no title", i+1, path)
		}
	}
	return f.Exclusions, nil
}
