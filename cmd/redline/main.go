package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/compare"
	"github.com/redlinehq/redline/evaluate"
	"github.com/redlinehq/redline/legislation"
	"github.com/redlinehq/redline/report"
	"github.com/redlinehq/redline/rules"
	"github.com/redlinehq/redline/taxonomy"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "redline",
		Short: "Policy-vs-legislation comparator",
		Long: `Redline compares extracted HR policy rules against California and
federal legislation rules and produces auditable conflict verdicts.

It takes a JSON rule set extracted from a policy document and reports,
per rule and per jurisdiction, whether the policy contradicts, falls
short of, meets, or exceeds the legislative floor.`,
		Version: version,
	}

	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(corpusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadCorpus resolves the taxonomy and legislation corpus from flags,
// falling back to the embedded defaults.
func loadCorpus(taxonomyPath, corpusDir string) (*taxonomy.Taxonomy, *legislation.Corpus, error) {
	var tax *taxonomy.Taxonomy
	var err error
	if taxonomyPath != "" {
		tax, err = taxonomy.LoadFile(taxonomyPath)
	} else {
		tax, err = taxonomy.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	var corpus *legislation.Corpus
	if corpusDir != "" {
		corpus, err = legislation.LoadDir(corpusDir, tax)
	} else {
		corpus, err = legislation.Load(tax)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load legislation corpus: %w", err)
	}
	return tax, corpus, nil
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a policy rule set against legislation",
		Long: `Compare an extracted policy rule set against the legislation corpus.

The input file is a JSON object: {"policy_name": ..., "rules": [...]}.

Example:
  redline compare --input handbook.json
  redline compare --input handbook.json --output report.json
  redline compare --input handbook.json --summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			summaryOnly, _ := cmd.Flags().GetBool("summary")
			taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
			corpusDir, _ := cmd.Flags().GetString("corpus")

			if input == "" {
				return fmt.Errorf("--input flag is required")
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			var req struct {
				PolicyName string                `json:"policy_name"`
				Rules      []rules.ExtractedRule `json:"rules"`
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("failed to parse input: %w", err)
			}
			if req.PolicyName == "" {
				req.PolicyName = input
			}

			tax, corpus, err := loadCorpus(taxonomyPath, corpusDir)
			if err != nil {
				return err
			}

			start := time.Now()
			deduped := rules.Deduplicate(req.Rules)
			comparison := compare.Run(deduped, corpus, tax)
			rep := report.New(req.PolicyName, comparison)

			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer file.Close()
				encoder := json.NewEncoder(file)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(rep); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Printf("Report saved to: %s\n", output)
			}

			fmt.Printf("Compared %d rule(s) in %v\n", comparison.Summary.Total, time.Since(start))
			fmt.Printf("  Conflicts: %d\n", comparison.Summary.Conflicts)
			fmt.Printf("  Compliant: %d\n", comparison.Summary.Compliant)
			if len(comparison.MissingRequirements) > 0 {
				fmt.Printf("  Missing requirements: %d\n", len(comparison.MissingRequirements))
			}
			if len(comparison.Rejected) > 0 {
				fmt.Printf("  Rejected rules: %d\n", len(comparison.Rejected))
			}

			if summaryOnly || output != "" {
				return nil
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rep)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Input rule set file (JSON)")
	cmd.Flags().StringP("output", "o", "", "Output report file (JSON)")
	cmd.Flags().Bool("summary", false, "Print counts only, not the full report")
	cmd.Flags().String("taxonomy", "", "Taxonomy YAML file (default: embedded)")
	cmd.Flags().String("corpus", "", "Legislation corpus directory (default: embedded)")

	return cmd
}

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate legislation rules against a fact set",
		Long: `Evaluate which legislation rules apply to a set of facts.

The facts file is a JSON object keyed by namespace, e.g.
{"employee": {"classification": "non_exempt", "hours_worked_daily": 10}}.

Example:
  redline evaluate --facts employee.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			factsPath, _ := cmd.Flags().GetString("facts")
			taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
			corpusDir, _ := cmd.Flags().GetString("corpus")

			if factsPath == "" {
				return fmt.Errorf("--facts flag is required")
			}

			data, err := os.ReadFile(factsPath)
			if err != nil {
				return fmt.Errorf("failed to read facts: %w", err)
			}
			var facts map[string]any
			if err := json.Unmarshal(data, &facts); err != nil {
				return fmt.Errorf("failed to parse facts: %w", err)
			}

			_, corpus, err := loadCorpus(taxonomyPath, corpusDir)
			if err != nil {
				return err
			}

			engine, err := evaluate.NewEngine()
			if err != nil {
				return err
			}
			var compileErr error
			corpus.EachRule(func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule) {
				if compileErr != nil {
					return
				}
				compileErr = engine.AddRule(r)
			})
			if compileErr != nil {
				return fmt.Errorf("failed to compile corpus rules: %w", compileErr)
			}

			results := engine.EvaluateAll(facts)
			matched := 0
			for _, res := range results {
				status := "no match"
				if res.Matched {
					status = "MATCH"
					matched++
				}
				if res.Error != "" {
					status = "error: " + res.Error
				}
				fmt.Printf("  %-28s %-40s %s\n", res.RuleID, res.Subject, status)
			}
			fmt.Printf("\n%d of %d rule(s) matched\n", matched, len(results))
			return nil
		},
	}

	cmd.Flags().StringP("facts", "f", "", "Facts file (JSON)")
	cmd.Flags().String("taxonomy", "", "Taxonomy YAML file (default: embedded)")
	cmd.Flags().String("corpus", "", "Legislation corpus directory (default: embedded)")

	return cmd
}

func corpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect and validate the legislation corpus",
	}
	cmd.AddCommand(corpusValidateCmd())
	cmd.AddCommand(corpusListCmd())
	return cmd
}

func corpusValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the legislation corpus against the taxonomy",
		Long: `Load the legislation corpus and report validation failures:
unknown topics, malformed rules, duplicate rule IDs, alias field names,
and subjects that do not classify to their declared topic.

Example:
  redline corpus validate
  redline corpus validate --corpus ./corpus --taxonomy ./taxonomy.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
			corpusDir, _ := cmd.Flags().GetString("corpus")

			_, corpus, err := loadCorpus(taxonomyPath, corpusDir)
			if err != nil {
				return err
			}

			total := 0
			corpus.EachRule(func(topic string, jur rules.Jurisdiction, leg *rules.Legislation, r rules.Rule) {
				total++
			})
			fmt.Printf("Corpus OK: %d topic(s), %d rule(s)\n", len(corpus.Topics()), total)
			return nil
		},
	}

	cmd.Flags().String("taxonomy", "", "Taxonomy YAML file (default: embedded)")
	cmd.Flags().String("corpus", "", "Legislation corpus directory (default: embedded)")

	return cmd
}

func corpusListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded legislation by topic and jurisdiction",
		RunE: func(cmd *cobra.Command, args []string) error {
			taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
			corpusDir, _ := cmd.Flags().GetString("corpus")

			_, corpus, err := loadCorpus(taxonomyPath, corpusDir)
			if err != nil {
				return err
			}

			for _, topic := range corpus.Topics() {
				fmt.Printf("%s\n", topic)
				for _, jur := range rules.Jurisdictions {
					leg, ok := corpus.Get(topic, jur)
					if !ok {
						continue
					}
					fmt.Printf("  %-8s %-52s %d rule(s)\n", jur, leg.Name, len(leg.Rules))
				}
			}
			return nil
		},
	}

	cmd.Flags().String("taxonomy", "", "Taxonomy YAML file (default: embedded)")
	cmd.Flags().String("corpus", "", "Legislation corpus directory (default: embedded)")

	return cmd
}
