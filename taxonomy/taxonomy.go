// Package taxonomy holds the canonical topic table that makes policy and
// legislation rules comparable: the condition-field vocabulary, field
// aliases for extraction-model variance, per-topic subject keywords, and
// the governing parameters (with protective direction) the classifier
// compares. The table is configuration data, loaded from YAML, never
// computed.
package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a malformed taxonomy. It is fatal at load time.
var ErrInvalid = errors.New("invalid taxonomy")

// ParamSource says which side of a rule carries a governing parameter.
type ParamSource string

const (
	// SourceAction reads the parameter from action.parameters.
	SourceAction ParamSource = "action"
	// SourceCondition reads the parameter from a condition threshold on
	// the named canonical field.
	SourceCondition ParamSource = "condition"
)

// Direction declares which way a parameter protects the employee.
type Direction string

const (
	// HigherMoreProtective: a larger value is a larger benefit (more
	// leave weeks, longer notice).
	HigherMoreProtective Direction = "higher_more_protective"
	// LowerMoreProtective: a smaller value protects more employees or
	// pays sooner (a lower eligibility threshold, a shorter payout
	// deadline).
	LowerMoreProtective Direction = "lower_more_protective"
)

// Parameter is one governing quantitative parameter of a topic.
type Parameter struct {
	Name      string      `yaml:"name"`
	Source    ParamSource `yaml:"source"`
	Direction Direction   `yaml:"direction"`
}

// Topic is one canonical comparison subject.
type Topic struct {
	Name       string      `yaml:"name"`
	Keywords   []string    `yaml:"keywords"`
	Parameters []Parameter `yaml:"parameters"`
}

// Taxonomy is the full canonical table. Topics keep declaration order;
// classification and reporting iterate that order for determinism.
type Taxonomy struct {
	Version      int               `yaml:"version"`
	Fields       map[string]string `yaml:"fields"`
	FieldAliases map[string]string `yaml:"field_aliases"`
	Topics       []Topic           `yaml:"topics"`

	byName map[string]*Topic
}

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Load returns the embedded default taxonomy.
func Load() (*Taxonomy, error) {
	return Parse(defaultTaxonomy)
}

// LoadFile loads a taxonomy from an external YAML file, for deployments
// that maintain their own table.
func LoadFile(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.byName = make(map[string]*Topic, len(t.Topics))
	for i := range t.Topics {
		t.byName[t.Topics[i].Name] = &t.Topics[i]
	}
	return &t, nil
}

func (t *Taxonomy) validate() error {
	if len(t.Topics) == 0 {
		return fmt.Errorf("%w: no topics declared", ErrInvalid)
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("%w: no canonical fields declared", ErrInvalid)
	}
	names := make(map[string]bool, len(t.Topics))
	for _, topic := range t.Topics {
		if topic.Name == "" {
			return fmt.Errorf("%w: topic with empty name", ErrInvalid)
		}
		if names[topic.Name] {
			return fmt.Errorf("%w: duplicate topic %q", ErrInvalid, topic.Name)
		}
		names[topic.Name] = true
		if len(topic.Keywords) == 0 {
			return fmt.Errorf("%w: topic %q has no keywords", ErrInvalid, topic.Name)
		}
		for _, p := range topic.Parameters {
			if p.Name == "" {
				return fmt.Errorf("%w: topic %q has a parameter with no name", ErrInvalid, topic.Name)
			}
			switch p.Source {
			case SourceAction:
			case SourceCondition:
				if _, ok := t.Fields[p.Name]; !ok {
					return fmt.Errorf("%w: topic %q condition parameter %q is not a canonical field", ErrInvalid, topic.Name, p.Name)
				}
			default:
				return fmt.Errorf("%w: topic %q parameter %q has unknown source %q", ErrInvalid, topic.Name, p.Name, p.Source)
			}
			if p.Direction != HigherMoreProtective && p.Direction != LowerMoreProtective {
				return fmt.Errorf("%w: topic %q parameter %q has unknown direction %q", ErrInvalid, topic.Name, p.Name, p.Direction)
			}
		}
	}
	for alias, target := range t.FieldAliases {
		if _, ok := t.Fields[target]; !ok {
			return fmt.Errorf("%w: alias %q maps to unknown field %q", ErrInvalid, alias, target)
		}
	}
	return nil
}

// Topic looks up a topic by canonical name.
func (t *Taxonomy) Topic(name string) (*Topic, bool) {
	topic, ok := t.byName[name]
	return topic, ok
}

// CanonicalField maps a raw field name onto the canonical vocabulary.
// Exact canonical names map to themselves; known aliases map to their
// target; anything else returns ok=false and the field passes through
// unchanged upstream.
func (t *Taxonomy) CanonicalField(field string) (string, bool) {
	if _, ok := t.Fields[field]; ok {
		return field, true
	}
	if target, ok := t.FieldAliases[field]; ok {
		return target, true
	}
	return "", false
}

// ClassifyTopic scores a rule's action subject and rule type against each
// topic's keyword set and returns the best-scoring topic name, or "" when
// nothing matches. Topics are scanned in declaration order and only a
// strictly greater score displaces an earlier topic, so ties resolve
// deterministically.
func (t *Taxonomy) ClassifyTopic(subject, ruleType string) string {
	searchText := strings.ToLower(subject + " " + ruleType)

	best := ""
	bestScore := 0
	for _, topic := range t.Topics {
		score := 0
		for _, kw := range topic.Keywords {
			if strings.Contains(searchText, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = topic.Name
		}
	}
	return best
}
