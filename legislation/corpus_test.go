package legislation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

func loadTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, err := taxonomy.Load()
	if err != nil {
		t.Fatalf("taxonomy.Load() failed: %v", err)
	}
	return tax
}

func TestLoadEmbeddedCorpus(t *testing.T) {
	corpus, err := Load(loadTaxonomy(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	wantTopics := []string{"family_leave", "final_paycheck", "layoff_notice", "meal_breaks", "overtime"}
	got := corpus.Topics()
	if len(got) != len(wantTopics) {
		t.Fatalf("Topics() = %v, want %v", got, wantTopics)
	}
	for i, topic := range wantTopics {
		if got[i] != topic {
			t.Errorf("Topics()[%d] = %q, want %q (sorted order)", i, got[i], topic)
		}
	}
}

func TestGetDistinguishesNoFloorFromMissingEntry(t *testing.T) {
	corpus, err := Load(loadTaxonomy(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Federal meal breaks is a deliberate zero-rule entry.
	leg, ok := corpus.Get("meal_breaks", rules.JurisdictionFederal)
	if !ok {
		t.Fatal("zero-rule entry should still resolve")
	}
	if len(leg.Rules) != 0 {
		t.Errorf("federal meal_breaks has %d rules, want 0", len(leg.Rules))
	}

	if _, ok := corpus.Get("parking", rules.JurisdictionCA); ok {
		t.Error("Get() resolved a topic the corpus does not contain")
	}
}

func TestEachRuleOrderIsDeterministic(t *testing.T) {
	corpus, err := Load(loadTaxonomy(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	collect := func() []string {
		var ids []string
		corpus.EachRule(func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule) {
			ids = append(ids, r.RuleID)
		})
		return ids
	}

	first := collect()
	if len(first) == 0 {
		t.Fatal("EachRule visited no rules")
	}
	for i := 0; i < 10; i++ {
		again := collect()
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("iteration order changed: %v vs %v", first, again)
			}
		}
	}

	// CA sorts before federal within each topic.
	if first[0] != "ca_pfl_001" || first[1] != "federal_fmla_001" {
		t.Errorf("unexpected leading order: %v", first[:2])
	}
}

const validCorpusFile = `topic: overtime
legislation:
  name: Test Overtime
  jurisdiction: CA
  effective_date: "2000-01-01"
  rules:
    - rule_id: test_ot_001
      rule_type: compensation
      condition_logic: all
      conditions:
        - field: employee.hours_worked_daily
          operator: gt
          value: 8
      action:
        type: require
        subject: overtime_pay
        parameters:
          rate_multiplier: 1.5
      source_text: test
`

func writeCorpusDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDirAcceptsValidCorpus(t *testing.T) {
	dir := writeCorpusDir(t, map[string]string{"ca_overtime.yaml": validCorpusFile})
	corpus, err := LoadDir(dir, loadTaxonomy(t))
	if err != nil {
		t.Fatalf("LoadDir() failed: %v", err)
	}
	if got := corpus.Rules("overtime", rules.JurisdictionCA); len(got) != 1 {
		t.Errorf("loaded %d rules, want 1", len(got))
	}
}

func TestLoadDirRejectsInvalidCorpus(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			"missing topic",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "topic: overtime", "topic: \"\"", 1)},
			"missing topic",
		},
		{
			"topic not in taxonomy",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "topic: overtime", "topic: parking", 1)},
			"not in the taxonomy",
		},
		{
			"unknown jurisdiction",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "jurisdiction: CA", "jurisdiction: TX", 1)},
			"unknown jurisdiction",
		},
		{
			"alias field in corpus",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "field: employee.hours_worked_daily", "field: hours.daily", 1)},
			"alias",
		},
		{
			"field absent from taxonomy",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "field: employee.hours_worked_daily", "field: employee.mood", 1)},
			"absent from the taxonomy",
		},
		{
			"subject classifies to another topic",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "subject: overtime_pay", "subject: meal_break", 1)},
			"classifies to topic",
		},
		{
			"duplicate rule id across files",
			map[string]string{
				"a.yaml": validCorpusFile,
				"b.yaml": strings.Replace(
					strings.Replace(validCorpusFile, "topic: overtime", "topic: meal_breaks", 1),
					"subject: overtime_pay", "subject: meal_break", 1),
			},
			"appears in both",
		},
		{
			"duplicate topic and jurisdiction",
			map[string]string{
				"a.yaml": validCorpusFile,
				"b.yaml": strings.Replace(validCorpusFile, "test_ot_001", "test_ot_002", 1),
			},
			"duplicate",
		},
		{
			"structurally invalid rule",
			map[string]string{"a.yaml": strings.Replace(validCorpusFile, "operator: gt", "operator: around", 1)},
			"unknown operator",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeCorpusDir(t, tc.files)
			_, err := LoadDir(dir, loadTaxonomy(t))
			if err == nil {
				t.Fatal("LoadDir() accepted an invalid corpus")
			}
			if !errors.Is(err, ErrInvalidCorpus) {
				t.Errorf("error %q does not wrap ErrInvalidCorpus", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
