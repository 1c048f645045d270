package analytics

import (
	"github.com/samber/lo"

	"github.com/andresuchdata/tms-dashboard/internal/normalize"
)

// Verdict is what a reclassification rule decides for a record.
type Verdict int

const (
	// Keep leaves the running bucket name as it is.
	Keep Verdict = iota
	// Rename replaces the running bucket name.
	Rename
	// Skip drops the record from every view.
	Skip
)

// Rule rewrites a project bucket. Apply only runs when the running bucket is
// one of Projects; it receives canonical bucket, pickup city and county.
type Rule struct {
	Name     string
	Projects []string
	Apply    func(bucket, city, county string) (string, Verdict)
}

// ReclassificationRules run top to bottom on the running bucket name, so a
// rule may refine the output of an earlier one.
var ReclassificationRules = []Rule{
	{
		Name:     "küçükbay-by-city",
		Projects: []string{"KÜÇÜKBAY FTL"},
		Apply: func(_, city, _ string) (string, Verdict) {
			switch city {
			case "İZMİR":
				return "KÜÇÜKBAY İZMİR FTL", Rename
			case "EDİRNE":
				return "KÜÇÜKBAY TRAKYA FTL", Rename
			}
			return "", Skip
		},
	},
	{
		Name:     "ebebek-gebze",
		Projects: []string{"EBEBEK FTL"},
		Apply: func(_, _, county string) (string, Verdict) {
			if county == "GEBZE" {
				return "EBEBEK FTL GEBZE", Rename
			}
			return "", Keep
		},
	},
	{
		Name:     "modern-karton-merge",
		Projects: []string{"MODERN BOBİN FTL", "MODERN KAĞIT FTL"},
		Apply: func(_, _, _ string) (string, Verdict) {
			return "MODERN KARTON FTL", Rename
		},
	},
	{
		Name:     "modern-karton-trakya",
		Projects: []string{"MODERN KARTON FTL"},
		Apply: func(_, city, county string) (string, Verdict) {
			if city == "TEKİRDAĞ" || county == "ÇORLU" {
				return "MODERN KARTON TRAKYA FTL", Rename
			}
			return "", Keep
		},
	},
	{
		Name:     "pepsi-legacy-name",
		Projects: []string{"PEPSİCO FTL"},
		Apply: func(_, _, _ string) (string, Verdict) {
			return "PEPSİ FTL", Rename
		},
	},
}

// Reclassify maps a raw project name to its bucket using ReclassificationRules.
// The second result is false when a rule skips the record.
func Reclassify(project, city, county any) (string, bool) {
	return reclassifyWith(ReclassificationRules, normalize.Text(project), normalize.Text(city), normalize.Text(county))
}

func reclassifyWith(rules []Rule, bucket, city, county string) (string, bool) {
	for _, rule := range rules {
		if !lo.Contains(rule.Projects, bucket) {
			continue
		}
		name, verdict := rule.Apply(bucket, city, county)
		switch verdict {
		case Skip:
			return "", false
		case Rename:
			bucket = name
		}
	}
	return bucket, true
}
