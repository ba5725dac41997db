// Package coaching turns a scoring result into an actionable training
// report. Everything here is a pure function of its input: same result,
// byte-identical report. Reprocessing a demo without reparsing it can
// therefore never change the stored report.
package coaching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/demoscope/demoscope/internal/scoring"
)

// PriorityIssue is one detected problem, ordered most urgent first.
type PriorityIssue struct {
	Area     string `json:"area"`
	Issue    string `json:"issue"`
	Severity string `json:"severity"`
}

// Recommendation is the remediation attached to a triggered rule.
type Recommendation struct {
	Category     string     `json:"category"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Exercises    []Exercise `json:"exercises"`
	WorkshopMaps []string   `json:"workshopMaps,omitempty"`
}

// DayPlan is one day of the weekly schedule.
type DayPlan struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Duration  int        `json:"duration"`
	Exercises []Exercise `json:"exercises"`
}

// Report is the full coaching output embedded in the analysis row.
type Report struct {
	Summary         string           `json:"summary"`
	PriorityIssues  []PriorityIssue  `json:"priorityIssues"`
	Recommendations []Recommendation `json:"recommendations"`
	Exercises       []Exercise       `json:"suggestedExercises"`
	WeeklyPlan      []DayPlan        `json:"weeklyPlan"`
}

const (
	maxExercises = 10
	weakScore    = 50
)

// GenerateReport evaluates the rule table against a scoring result and
// assembles the report. Rules fire independently; ordering is by rule
// priority with table order breaking ties.
func GenerateReport(result *scoring.Result) Report {
	triggered := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Condition(result) {
			triggered = append(triggered, rule)
		}
	}
	sort.SliceStable(triggered, func(i, j int) bool {
		return triggered[i].Priority < triggered[j].Priority
	})

	issues := make([]PriorityIssue, 0, len(triggered))
	recs := make([]Recommendation, 0, len(triggered))
	for _, rule := range triggered {
		issues = append(issues, PriorityIssue{
			Area:     rule.Category,
			Issue:    rule.ID,
			Severity: severityFor(rule.Priority),
		})
		recs = append(recs, Recommendation{
			Category:     rule.Category,
			Title:        rule.Title,
			Description:  rule.Description,
			Exercises:    rule.Exercises,
			WorkshopMaps: rule.WorkshopMaps,
		})
	}

	return Report{
		Summary:         buildSummary(result, issues),
		PriorityIssues:  issues,
		Recommendations: recs,
		Exercises:       selectExercises(result, recs),
		WeeklyPlan:      buildWeeklyPlan(recs),
	}
}

// selectExercises picks up to maxExercises drills: two per weak category
// (weakest first, at most three categories), then the lead exercise of the
// top recommendations, deduplicated by name.
func selectExercises(result *scoring.Result, recs []Recommendation) []Exercise {
	type weak struct {
		category string
		score    int
	}
	weaks := []weak{}
	for _, category := range categoryOrder {
		if score, ok := categoryScore(result, category); ok && score < weakScore {
			weaks = append(weaks, weak{category, score})
		}
	}
	sort.SliceStable(weaks, func(i, j int) bool { return weaks[i].score < weaks[j].score })
	if len(weaks) > 3 {
		weaks = weaks[:3]
	}

	selected := []Exercise{}
	seen := map[string]bool{}
	add := func(ex Exercise) {
		if len(selected) >= maxExercises || seen[ex.Name] {
			return
		}
		seen[ex.Name] = true
		selected = append(selected, ex)
	}

	for _, w := range weaks {
		for i, ex := range defaultExercises[w.category] {
			if i >= 2 {
				break
			}
			add(ex)
		}
	}
	for i, rec := range recs {
		if i >= 3 {
			break
		}
		if len(rec.Exercises) > 0 {
			add(rec.Exercises[0])
		}
	}
	return selected
}

// weeklySchedule is fixed. Saturday is the long session on decision making,
// Sunday is deliberately light.
var weeklySchedule = []struct {
	day      string
	focus    string
	duration int
}{
	{"monday", scoring.CategoryAim, 30},
	{"tuesday", scoring.CategoryPositioning, 30},
	{"wednesday", scoring.CategoryUtility, 30},
	{"thursday", scoring.CategoryTiming, 30},
	{"friday", scoring.CategoryAim, 30},
	{"saturday", scoring.CategoryDecision, 45},
	{"sunday", "recovery", 20},
}

// buildWeeklyPlan fills each day from the recommendations matching its
// focus, falling back to the category defaults when nothing triggered.
func buildWeeklyPlan(recs []Recommendation) []DayPlan {
	plan := make([]DayPlan, 0, len(weeklySchedule))
	for _, slot := range weeklySchedule {
		day := DayPlan{Day: slot.day, Focus: slot.focus, Duration: slot.duration}
		if slot.focus == "recovery" {
			day.Exercises = recoveryExercises
			plan = append(plan, day)
			continue
		}

		matched := 0
		for _, rec := range recs {
			if rec.Category != slot.focus || matched >= 2 {
				continue
			}
			matched++
			for i, ex := range rec.Exercises {
				if i >= 2 {
					break
				}
				day.Exercises = append(day.Exercises, ex)
			}
		}
		if len(day.Exercises) == 0 {
			day.Exercises = defaultExercises[slot.focus]
		}
		plan = append(plan, day)
	}
	return plan
}

func buildSummary(result *scoring.Result, issues []PriorityIssue) string {
	critical := 0
	for _, issue := range issues {
		if issue.Severity == SeverityCritical {
			critical++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Overall performance score: %d/100.", result.Scores.Overall)
	if len(result.Strengths) > 0 {
		fmt.Fprintf(&b, " Strengths: %s.", strings.Join(result.Strengths, ", "))
	}
	if len(result.Weaknesses) > 0 {
		fmt.Fprintf(&b, " Areas to improve: %s.", strings.Join(result.Weaknesses, ", "))
	}
	switch critical {
	case 0:
		b.WriteString(" No critical issues detected.")
	case 1:
		b.WriteString(" 1 critical issue needs immediate attention.")
	default:
		fmt.Fprintf(&b, " %d critical issues need immediate attention.", critical)
	}
	return b.String()
}

// categoryOrder fixes the iteration order for exercise selection.
var categoryOrder = []string{
	scoring.CategoryAim,
	scoring.CategoryPositioning,
	scoring.CategoryUtility,
	scoring.CategoryEconomy,
	scoring.CategoryTiming,
	scoring.CategoryDecision,
	scoring.CategoryMovement,
	scoring.CategoryAwareness,
	scoring.CategoryTeamplay,
}

// categoryScore reads one category score; the newer categories are absent
// on legacy-generation results and report ok=false.
func categoryScore(result *scoring.Result, category string) (int, bool) {
	switch category {
	case scoring.CategoryAim:
		return result.Scores.Aim, true
	case scoring.CategoryPositioning:
		return result.Scores.Positioning, true
	case scoring.CategoryUtility:
		return result.Scores.Utility, true
	case scoring.CategoryEconomy:
		return result.Scores.Economy, true
	case scoring.CategoryTiming:
		return result.Scores.Timing, true
	case scoring.CategoryDecision:
		return result.Scores.Decision, true
	case scoring.CategoryMovement:
		if result.Scores.Movement != nil {
			return *result.Scores.Movement, true
		}
	case scoring.CategoryAwareness:
		if result.Scores.Awareness != nil {
			return *result.Scores.Awareness, true
		}
	case scoring.CategoryTeamplay:
		if result.Scores.Teamplay != nil {
			return *result.Scores.Teamplay, true
		}
	}
	return 0, false
}
