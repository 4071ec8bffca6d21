package registry

import (
	"time"

	"github.com/todmy/doc-reconciler/pkg/models"
)

// SampleConflicts returns a small built-in snapshot used when no database
// or fixture is configured, covering all three conflict types.
func SampleConflicts() []models.Conflict {
	detected := time.Now().Add(-2 * time.Hour)
	return []models.Conflict{
		{
			ID:          "c-001",
			Type:        models.TypeTemporal,
			Title:       "Headquarters address changed between filings",
			Description: "Two filings report different registered addresses for the same entity.",
			Status:      models.StatusOpen,
			DetectedAt:  detected,
			Recommendation: "The 2024 annual report postdates the 2021 registration; " +
				"the Riverside Plaza address is likely current.",
			Mentions: []models.Mention{
				{
					ID:           "m-001",
					DocumentID:   "doc-reg-2021",
					DocumentName: "Registration Statement 2021",
					Page:         4,
					Section:      "Corporate Information",
					Text:         "The company's principal office is located at 12 Harbor Street, Oakton.",
					Date:         "2021-03-15",
					SourceType:   "registration",
				},
				{
					ID:           "m-002",
					DocumentID:   "doc-ar-2024",
					DocumentName: "Annual Report 2024",
					Page:         2,
					Section:      "General",
					Text:         "The company's principal office is located at 800 Riverside Plaza, Oakton.",
					Date:         "2024-06-30",
					SourceType:   "annual_report",
				},
			},
		},
		{
			ID:          "c-002",
			Type:        models.TypeContradiction,
			Title:       "Employee headcount disagrees across reports",
			Description: "The audit summary and the HR filing state different headcounts for the same period.",
			Status:      models.StatusOpen,
			DetectedAt:  detected,
			Mentions: []models.Mention{
				{
					ID:           "m-003",
					DocumentID:   "doc-audit",
					DocumentName: "Audit Summary Q4",
					Page:         11,
					Section:      "Workforce",
					Text:         "As of December 31 the company employed 214 full-time staff.",
				},
				{
					ID:           "m-004",
					DocumentID:   "doc-hr",
					DocumentName: "HR Compliance Filing",
					Page:         3,
					Section:      "Staffing",
					Text:         "As of December 31 the company employed 198 full-time staff.",
				},
			},
		},
		{
			ID:          "c-003",
			Type:        models.TypeIntraDoc,
			Title:       "Inconsistent project completion dates within contract",
			Description: "The same contract states two different completion dates in different sections.",
			Status:      models.StatusOpen,
			DetectedAt:  detected,
			Mentions: []models.Mention{
				{
					ID:           "m-005",
					DocumentID:   "doc-contract",
					DocumentName: "Services Contract 2025-117",
					Page:         6,
					Section:      "Schedule of Work",
					Text:         "All deliverables shall be completed no later than March 31, 2026.",
				},
				{
					ID:           "m-006",
					DocumentID:   "doc-contract",
					DocumentName: "Services Contract 2025-117",
					Page:         22,
					Section:      "Appendix B",
					Text:         "All deliverables shall be completed no later than April 30, 2026.",
				},
			},
		},
	}
}
