// Package legislation loads and validates the structured legislation
// corpus: one YAML file per (jurisdiction, topic), authored against the
// canonical taxonomy. Validation is fatal at load time so a partially
// loaded or malformed corpus can never reach a comparison run.
package legislation

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

// ErrInvalidCorpus marks a corpus that failed load-time validation.
var ErrInvalidCorpus = errors.New("invalid legislation corpus")

// file is the on-disk document shape: a topic plus one statute.
type file struct {
	Topic       string            `yaml:"topic"`
	Legislation rules.Legislation `yaml:"legislation"`
}

// Corpus is the fully materialized legislation set, keyed by
// (topic, jurisdiction). It is immutable after load.
type Corpus struct {
	topics  []string
	byTopic map[string]map[rules.Jurisdiction]*rules.Legislation
}

//go:embed corpus/*.yaml
var corpusFS embed.FS

// Load parses and validates the embedded default corpus.
func Load(tax *taxonomy.Taxonomy) (*Corpus, error) {
	return loadFS(corpusFS, "corpus", tax)
}

// LoadDir parses and validates a corpus maintained outside the binary.
func LoadDir(dir string, tax *taxonomy.Taxonomy) (*Corpus, error) {
	return loadFS(os.DirFS(dir), ".", tax)
}

func loadFS(fsys fs.FS, root string, tax *taxonomy.Taxonomy) (*Corpus, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	c := &Corpus{byTopic: make(map[string]map[rules.Jurisdiction]*rules.Legislation)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read corpus file %s: %w", name, err)
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCorpus, name, err)
		}
		if f.Topic == "" {
			return nil, fmt.Errorf("%w: %s: missing topic", ErrInvalidCorpus, name)
		}
		if !f.Legislation.Jurisdiction.Valid() {
			return nil, fmt.Errorf("%w: %s: unknown jurisdiction %q", ErrInvalidCorpus, name, f.Legislation.Jurisdiction)
		}
		jur := f.Legislation.Jurisdiction
		if c.byTopic[f.Topic] == nil {
			c.byTopic[f.Topic] = make(map[rules.Jurisdiction]*rules.Legislation)
		}
		if _, dup := c.byTopic[f.Topic][jur]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate (%s, %s) entry", ErrInvalidCorpus, name, f.Topic, jur)
		}
		leg := f.Legislation
		c.byTopic[f.Topic][jur] = &leg
	}

	for topic := range c.byTopic {
		c.topics = append(c.topics, topic)
	}
	sort.Strings(c.topics)

	if err := c.validate(tax); err != nil {
		return nil, err
	}
	return c, nil
}

// validate enforces the corpus invariants against the taxonomy: every
// topic must be declared, every rule structurally valid with a unique ID,
// every condition field in the canonical set (aliases are for extraction
// output, not for corpus authors), and every rule's subject must classify
// back to the file's declared topic so matching cannot diverge.
func (c *Corpus) validate(tax *taxonomy.Taxonomy) error {
	seenIDs := make(map[string]string) // rule_id -> file topic
	for _, topic := range c.topics {
		if _, ok := tax.Topic(topic); !ok {
			return fmt.Errorf("%w: topic %q is not in the taxonomy", ErrInvalidCorpus, topic)
		}
		for _, jur := range rules.Jurisdictions {
			leg, ok := c.byTopic[topic][jur]
			if !ok {
				continue
			}
			for _, r := range leg.Rules {
				if err := r.Validate(); err != nil {
					return fmt.Errorf("%w: topic %s (%s): %v", ErrInvalidCorpus, topic, jur, err)
				}
				if prev, dup := seenIDs[r.RuleID]; dup {
					return fmt.Errorf("%w: rule id %q appears in both %s and %s", ErrInvalidCorpus, r.RuleID, prev, topic)
				}
				seenIDs[r.RuleID] = topic
				for _, cond := range r.Conditions {
					canonical, ok := tax.CanonicalField(cond.Field)
					if !ok {
						return fmt.Errorf("%w: rule %s uses field %q absent from the taxonomy", ErrInvalidCorpus, r.RuleID, cond.Field)
					}
					if canonical != cond.Field {
						return fmt.Errorf("%w: rule %s uses alias %q; corpus files must use canonical field names", ErrInvalidCorpus, r.RuleID, cond.Field)
					}
				}
				if got := tax.ClassifyTopic(r.Action.Subject, string(r.RuleType)); got != topic {
					return fmt.Errorf("%w: rule %s subject %q classifies to topic %q, file declares %q", ErrInvalidCorpus, r.RuleID, r.Action.Subject, got, topic)
				}
			}
		}
	}
	return nil
}

// Topics returns all corpus topics in sorted order.
func (c *Corpus) Topics() []string {
	out := make([]string, len(c.topics))
	copy(out, c.topics)
	return out
}

// Get returns the statute for a (topic, jurisdiction) pair. ok is false
// when the corpus has no entry at all; an entry with zero rules is a
// deliberate "no floor" marker and returns ok=true.
func (c *Corpus) Get(topic string, jur rules.Jurisdiction) (*rules.Legislation, bool) {
	byJur, ok := c.byTopic[topic]
	if !ok {
		return nil, false
	}
	leg, ok := byJur[jur]
	return leg, ok
}

// Rules returns the legislation rules for a (topic, jurisdiction) pair in
// corpus declaration order.
func (c *Corpus) Rules(topic string, jur rules.Jurisdiction) []rules.Rule {
	leg, ok := c.Get(topic, jur)
	if !ok {
		return nil
	}
	return leg.Rules
}

// EachRule visits every corpus rule in deterministic order: topics
// sorted, then the fixed jurisdiction order, then declaration order.
func (c *Corpus) EachRule(visit func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule)) {
	for _, topic := range c.topics {
		for _, jur := range rules.Jurisdictions {
			leg, ok := c.byTopic[topic][jur]
			if !ok {
				continue
			}
			for _, r := range leg.Rules {
				visit(topic, jur, leg, r)
			}
		}
	}
}
