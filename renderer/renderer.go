// Package renderer renders advisor results as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/advisor"
)

//go:embed *.md
var templates embed.FS

// RenderScores renders the factor scores of a peer set.
func RenderScores(scores []advisor.FactorScore) string {
	return renderTemplate("scores", "scores.md", nil, "", scores)
}

// RenderOptimization renders the shares bought by the optimizer.
func RenderOptimization(res advisor.OptimizationResult, currency string) string {
	return renderTemplate("optimization", "optimization.md", nil, currency, newOptimization(res))
}

// RenderOverlap renders the look-through concentration of a portfolio.
func RenderOverlap(r advisor.OverlapReport) string {
	return renderTemplate("overlap", "overlap.md", nil, "", r)
}

// RenderDistribution renders a budget distribution.
func RenderDistribution(recs []advisor.BudgetRecommendation, currency string) string {
	return renderTemplate("distribution", "distribution.md", nil, currency, recs)
}

// RenderShares renders a budget distribution in whole shares.
func RenderShares(recs []advisor.ShareRecommendation, currency string) string {
	return renderTemplate("shares", "shares.md", nil, currency, recs)
}

// RenderProjection renders a projection cone, one row per year.
func RenderProjection(cone advisor.ProjectionCone, currency string) string {
	return renderTemplate("projection", "projection.md", nil, currency, newProjection(cone))
}

// RenderRecommendation renders a full recommendation.
func RenderRecommendation(rec *advisor.Recommendation, currency string) string {
	partials := map[string]string{
		"recommendation_title":    "recommendation_title.md",
		"recommendation_warnings": "recommendation_warnings.md",
		"scores":                  "scores.md",
		"optimization":            "optimization.md",
		"overlap":                 "overlap.md",
		"distribution":            "distribution.md",
		"projection":              "projection.md",
	}
	return renderTemplate("recommendation", "recommendation.md", partials, currency, newRecommendation(rec))
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, currency string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs(currency)).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
