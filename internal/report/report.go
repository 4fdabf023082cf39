// Package report renders a bias assessment into a human-readable audit
// document. Markdown is the canonical form; HTML is derived from it.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/VruddithShetty/TrialEquity/domain/assessment"
)

// Markdown renders the assessment as a markdown audit report
func Markdown(a *assessment.BiasAssessment) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Bias Assessment Report\n\n")
	fmt.Fprintf(&b, "- **Assessment ID:** %s\n", a.ID)
	fmt.Fprintf(&b, "- **Trial ID:** %s\n", a.TrialID)
	fmt.Fprintf(&b, "- **Assessed at:** %s\n", a.AssessedAt)
	fmt.Fprintf(&b, "- **Model version:** %s (accuracy %.3f)\n", a.ModelVersion, a.ModelAccuracy)
	if !a.UploadHash.IsEmpty() {
		fmt.Fprintf(&b, "- **Upload hash:** `%s`\n", a.UploadHash)
	}

	fmt.Fprintf(&b, "\n## Verdict: %s\n\n", a.Verdict)
	fmt.Fprintf(&b, "Weighted fairness score: **%.3f**\n\n", a.FairnessScore)
	if a.RejectionSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", a.RejectionSummary)
	}

	fmt.Fprintf(&b, "## Fairness Metrics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Demographic parity | %.3f |\n", a.Fairness.DemographicParity)
	fmt.Fprintf(&b, "| Disparate impact ratio | %.3f |\n", a.Fairness.DisparateImpactRatio)
	fmt.Fprintf(&b, "| Equality of opportunity | %.3f |\n", a.Fairness.EqualityOfOpportunity)
	fmt.Fprintf(&b, "| Bias probability | %.3f |\n", a.BiasProbability)
	fmt.Fprintf(&b, "| Outlier score | %.4f |\n", a.OutlierScore)
	outlier := "no"
	if a.IsOutlier {
		outlier = "yes"
	}
	fmt.Fprintf(&b, "| Demographic outlier | %s |\n\n", outlier)

	fmt.Fprintf(&b, "## Statistical Tests\n\n")
	fmt.Fprintf(&b, "| Attribute | Chi-square | p-value |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Gender | %.3f | %.4f |\n", a.Tests.Gender.Statistic, a.Tests.Gender.PValue)
	fmt.Fprintf(&b, "| Ethnicity | %.3f | %.4f |\n\n", a.Tests.Ethnicity.Statistic, a.Tests.Ethnicity.PValue)

	fmt.Fprintf(&b, "## Eligibility Rules\n\n")
	fmt.Fprintf(&b, "Status: **%s**\n\n", a.Eligibility.Status)
	for _, rule := range a.Eligibility.RulesPassed {
		fmt.Fprintf(&b, "- passed: %s\n", rule)
	}
	for _, rule := range a.Eligibility.RulesFailed {
		fmt.Fprintf(&b, "- failed: %s\n", rule)
	}

	if len(a.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n## Recommendations\n\n")
		for _, rec := range a.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	fmt.Fprintf(&b, "\n## Feature Vector\n\n")
	fmt.Fprintf(&b, "| Feature | Value |\n|---|---|\n")
	for i, name := range a.Features.Names {
		fmt.Fprintf(&b, "| %s | %.4f |\n", name, a.Features.Values[i])
	}

	return []byte(b.String())
}

// HTML renders the assessment report as an HTML fragment
func HTML(a *assessment.BiasAssessment) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse(Markdown(a))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
