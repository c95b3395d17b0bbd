package services

import (
	"time"

	"ksquare-onboarding/internal/models"
)

type seedRecord struct {
	useCase  models.UseCase
	profile  *models.ClientProfile
	meeting  models.MeetingRecord
	insights []models.Insight
}

// seedData returns the three predefined onboarding scenarios. Each carries a
// reference profile, one historical meeting, and a pair of knowledge-base
// insights so every pipeline stage has real data on a fresh install.
func seedData() []seedRecord {
	now := time.Now()

	return []seedRecord{
		{
			useCase: models.UseCase{
				ID:               "uc-automotive-001",
				ClientName:       "GT Automotive",
				Industry:         "Automotive",
				ProblemStatement: "Implement a lead management process using Salesforce",
				TechStack:        []string{"Salesforce", "Java"},
			},
			profile: &models.ClientProfile{
				Name:        "GT Automotive",
				Industry:    "Automotive",
				Founded:     1970,
				CompanySize: "Large",
				Region:      "USA, Latin America",
				Stakeholders: []models.Stakeholder{
					{Name: "John Doe", Role: "VP of Product"},
					{Name: "Jane Smith", Role: "CTO"},
				},
				TechStack:        []string{"Salesforce", "Java"},
				PrimaryChallenge: "Streamlining lead management processes",
				ProfileSource:    "seed",
				CreatedAt:        now,
				UpdatedAt:        now,
			},
			meeting: models.MeetingRecord{
				ID:         "seed-meeting-gt-001",
				ClientName: "GT Automotive",
				Transcript: "Discussion on lead management. VP of Product emphasized clear KPIs. Action item: Clarify MVP scope by next meeting. Engagement: 70%.",
				Date:       now.Add(-72 * time.Hour),
			},
			insights: []models.Insight{
				{
					ID:         "seed-insight-gt-001",
					ClientName: "GT Automotive",
					Type:       "domain_knowledge",
					Content:    "Automotive lead management projects succeed when CRM data quality is addressed before automation.",
					Tags:       []string{"automotive", "salesforce", "lead management"},
					CreatedAt:  now,
				},
				{
					ID:         "seed-insight-gt-002",
					ClientName: "GT Automotive",
					Type:       "recommendation",
					Content:    "Define MVP scope and KPIs with the VP of Product before the Salesforce build begins.",
					Tags:       []string{"automotive", "planning"},
					CreatedAt:  now,
				},
			},
		},
		{
			useCase: models.UseCase{
				ID:               "uc-healthcare-001",
				ClientName:       "MediCare Solutions",
				Industry:         "Healthcare",
				ProblemStatement: "Develop a patient record system with HIPAA compliance",
				TechStack:        []string{"Python", "AWS"},
			},
			profile: &models.ClientProfile{
				Name:        "MediCare Solutions",
				Industry:    "Healthcare",
				Founded:     2010,
				CompanySize: "Medium",
				Region:      "USA",
				Stakeholders: []models.Stakeholder{
					{Name: "Alice Brown", Role: "CTO"},
					{Name: "Bob Wilson", Role: "Compliance Officer"},
				},
				TechStack:        []string{"Python", "AWS"},
				PrimaryChallenge: "Building HIPAA-compliant patient record infrastructure",
				ProfileSource:    "seed",
				CreatedAt:        now,
				UpdatedAt:        now,
			},
			meeting: models.MeetingRecord{
				ID:         "seed-meeting-medicare-001",
				ClientName: "MediCare Solutions",
				Transcript: "Discussion on patient record system. CTO requested data encryption. Action item: Finalize encryption plan. Engagement: 80%.",
				Date:       now.Add(-48 * time.Hour),
			},
			insights: []models.Insight{
				{
					ID:         "seed-insight-medicare-001",
					ClientName: "MediCare Solutions",
					Type:       "domain_knowledge",
					Content:    "HIPAA compliance requires encryption at rest and in transit plus auditable access controls from day one.",
					Tags:       []string{"healthcare", "hipaa", "compliance"},
					CreatedAt:  now,
				},
				{
					ID:         "seed-insight-medicare-002",
					ClientName: "MediCare Solutions",
					Type:       "recommendation",
					Content:    "Involve the Compliance Officer in architecture reviews before any patient data is migrated.",
					Tags:       []string{"healthcare", "risk"},
					CreatedAt:  now,
				},
			},
		},
		{
			useCase: models.UseCase{
				ID:               "uc-retail-001",
				ClientName:       "ShopTrend Inc.",
				Industry:         "Retail",
				ProblemStatement: "Optimize e-commerce platform checkout process",
				TechStack:        []string{"Shopify", "Node.js"},
			},
			profile: &models.ClientProfile{
				Name:        "ShopTrend Inc.",
				Industry:    "Retail",
				Founded:     2015,
				CompanySize: "Medium",
				Region:      "Global",
				Stakeholders: []models.Stakeholder{
					{Name: "Emma Davis", Role: "Marketing Lead"},
					{Name: "Tom Clark", Role: "CTO"},
				},
				TechStack:        []string{"Shopify", "Node.js"},
				PrimaryChallenge: "Reducing checkout abandonment on the e-commerce platform",
				ProfileSource:    "seed",
				CreatedAt:        now,
				UpdatedAt:        now,
			},
			meeting: models.MeetingRecord{
				ID:         "seed-meeting-shoptrend-001",
				ClientName: "ShopTrend Inc.",
				Transcript: "Discussion on checkout optimization. Marketing Lead highlighted cart abandonment rates. Action item: Test checkout flow. Engagement: 65%.",
				Date:       now.Add(-24 * time.Hour),
			},
			insights: []models.Insight{
				{
					ID:         "seed-insight-shoptrend-001",
					ClientName: "ShopTrend Inc.",
					Type:       "domain_knowledge",
					Content:    "Checkout conversion improves most from reducing form fields and offering guest checkout.",
					Tags:       []string{"retail", "e-commerce", "checkout"},
					CreatedAt:  now,
				},
				{
					ID:         "seed-insight-shoptrend-002",
					ClientName: "ShopTrend Inc.",
					Type:       "recommendation",
					Content:    "A/B test the simplified checkout flow against the current funnel before a full rollout.",
					Tags:       []string{"retail", "testing"},
					CreatedAt:  now,
				},
			},
		},
	}
}
