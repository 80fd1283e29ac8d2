package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders result as a Markdown section.
func RenderMarkdown(result *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Cost Robustness Gate: %s\n\n", result.Decision)

	passed := writeChecks(&sb, "GO Criteria", "Criterion", "Threshold", result.GOCriteria,
		func(c CriterionResult) string {
			if c.Pass {
				return "PASS"
			}
			return "FAIL"
		})
	fmt.Fprintf(&sb, "\nGO Criteria: %d/%d passed\n\n", passed, len(result.GOCriteria))

	quiet := writeChecks(&sb, "NO-GO Triggers", "Trigger", "Condition", result.NOGOChecks,
		func(c CriterionResult) string {
			if c.Pass {
				return "NOT TRIGGERED"
			}
			return "TRIGGERED"
		})
	fmt.Fprintf(&sb, "\nNO-GO Triggers: %d/%d triggered\n\n", len(result.NOGOChecks)-quiet, len(result.NOGOChecks))

	if result.Decision == DecisionGO {
		sb.WriteString("All GO criteria passed and no NO-GO triggers fired.\n")
		return sb.String()
	}

	sb.WriteString("Decision is NO-GO due to:\n")
	for _, c := range result.GOCriteria {
		if !c.Pass {
			fmt.Fprintf(&sb, "- GO criterion failed: %s (actual: %s)\n", c.Name, c.Actual)
		}
	}
	for _, c := range result.NOGOChecks {
		if !c.Pass {
			fmt.Fprintf(&sb, "- NO-GO trigger fired: %s (actual: %s)\n", c.Name, c.Actual)
		}
	}
	return sb.String()
}

// writeChecks writes one numbered table and returns how many checks passed.
func writeChecks(sb *strings.Builder, title, nameCol, limitCol string, checks []CriterionResult, status func(CriterionResult) string) int {
	fmt.Fprintf(sb, "### %s\n\n", title)
	fmt.Fprintf(sb, "| # | %s | %s | Actual | Status |\n", nameCol, limitCol)
	sb.WriteString("|---|---|---|---|---|\n")

	passed := 0
	for i, c := range checks {
		if c.Pass {
			passed++
		}
		fmt.Fprintf(sb, "| %d | %s | %s | %s | %s |\n", i+1, c.Name, c.Threshold, c.Actual, status(c))
	}
	return passed
}
