// Package knowledge holds the curated industry knowledge base used by the
// domain analysis stage. Entries are static rule tables, not learned data.
package knowledge

import "strings"

// IndustryKnowledge is one industry's curated entry.
type IndustryKnowledge struct {
	BestPractices    []string `json:"best_practices"`
	CommonChallenges []string `json:"common_challenges"`
	RecommendedTools []string `json:"recommended_tools"`
}

// Base maps lowercased industry names to their curated entries. Lookup by any
// casing goes through Lookup.
var Base = map[string]IndustryKnowledge{
	"automotive": {
		BestPractices: []string{
			"Define clear KPIs early in the project",
			"Use Salesforce Sales Cloud for lead tracking",
			"Ensure clear customer journey mapping",
			"Implement robust data analytics for performance tracking",
			"Focus on scalability for growing lead volumes",
		},
		CommonChallenges: []string{
			"Complex lead qualification processes",
			"Integration with existing CRM systems",
			"Data quality and consistency issues",
			"User adoption and training requirements",
		},
		RecommendedTools: []string{"Salesforce", "HubSpot", "Pipedrive", "Java", "Python"},
	},
	"healthcare": {
		BestPractices: []string{
			"Ensure HIPAA compliance from day one",
			"Use encrypted databases for patient data",
			"Conduct regular security audits",
			"Implement role-based access controls",
			"Maintain detailed audit logs",
		},
		CommonChallenges: []string{
			"Regulatory compliance requirements",
			"Data security and privacy concerns",
			"Integration with existing healthcare systems",
			"User training on compliance procedures",
		},
		RecommendedTools: []string{"AWS RDS", "Python", "PostgreSQL", "Docker", "Kubernetes"},
	},
	"retail": {
		BestPractices: []string{
			"Simplify checkout forms to reduce abandonment",
			"Implement one-click checkout options",
			"Optimize for mobile-first experience",
			"Use A/B testing for conversion optimization",
			"Implement real-time inventory management",
		},
		CommonChallenges: []string{
			"High cart abandonment rates",
			"Mobile optimization requirements",
			"Payment gateway integration",
			"Inventory synchronization issues",
		},
		RecommendedTools: []string{"Shopify", "WooCommerce", "Node.js", "React", "Stripe"},
	},
}

// Lookup returns the curated entry for an industry, case-insensitively. The
// second return reports whether the industry is a known one; unknown
// industries get the generic fallback entry.
func Lookup(industry string) (IndustryKnowledge, bool) {
	entry, ok := Base[strings.ToLower(strings.TrimSpace(industry))]
	if !ok {
		return Generic(), false
	}
	return entry, true
}

// Generic is the fallback entry for industries outside the curated base.
func Generic() IndustryKnowledge {
	return IndustryKnowledge{
		BestPractices: []string{
			"Define clear project requirements and scope",
			"Implement proper testing and quality assurance",
			"Plan for scalability and future growth",
			"Ensure proper documentation and knowledge transfer",
		},
		CommonChallenges: []string{
			"Scope creep and changing requirements",
			"Integration with legacy systems",
			"User adoption and training",
			"Performance and scalability issues",
		},
		RecommendedTools: []string{"Python", "JavaScript", "PostgreSQL", "Docker", "Git"},
	}
}

// Known reports whether an industry has a curated entry.
func Known(industry string) bool {
	_, ok := Base[strings.ToLower(strings.TrimSpace(industry))]
	return ok
}
