package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclusions.yaml")

	doc := `exclusions:
  - title: "Физкультура"
  - title: "Алгебра"
    teacher: "Иванов"
    weekday: "вторник"
    start_time: "18:30"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(rules))
	}
	if rules[0].Title != "Физкультура" || rules[0].Teacher != "" {
		t.Errorf("Unexpected first rule: %+v", rules[0])
	}
	if rules[1].Teacher != "Иванов" || rules[1].StartTime != "18:30" {
		t.Errorf("Unexpected second rule: %+v", rules[1])
	}
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("Expected no error for empty path, got %v", err)
	}
	if rules != nil {
		t.Errorf("Expected nil rules, got %v", rules)
	}
}

func TestLoadRulesRejectsMissingTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exclusions.yaml")
	doc := `exclusions:
  - teacher: "Иванов"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(path); err == nil {
		t.Error("Expected error for rule without title")
	}
}
