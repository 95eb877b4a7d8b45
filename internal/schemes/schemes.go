// Package schemes holds the curated catalog of government agricultural
// schemes surfaced on the portal's informational pages.
package schemes

type Scheme struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Eligibility string `json:"eligibility"`
	Link        string `json:"link"`
	Category    string `json:"category"`
}

var catalog = []Scheme{
	{
		Title:       "Pradhan Mantri Kisan Samman Nidhi (PM-KISAN)",
		Description: "Direct income support of ₹6,000 per year to all landholding farmer families, payable in three equal installments of ₹2,000 each.",
		Eligibility: "All landholding farmer families",
		Link:        "https://pmkisan.gov.in/",
		Category:    "Financial Support",
	},
	{
		Title:       "Pradhan Mantri Fasal Bima Yojana (PMFBY)",
		Description: "Crop insurance scheme providing financial support to farmers suffering crop loss/damage arising out of unforeseen events.",
		Eligibility: "Farmers with insurable interest in notified crops",
		Link:        "https://pmfby.gov.in/",
		Category:    "Insurance",
	},
	{
		Title:       "Soil Health Card Scheme",
		Description: "Provides soil health cards to farmers with crop-wise recommendations of nutrients and fertilizers required for the individual farms.",
		Eligibility: "All farmers",
		Link:        "https://soilhealth.dac.gov.in/",
		Category:    "Sustainability",
	},
	{
		Title:       "National Agriculture Market (e-NAM)",
		Description: "Pan-India electronic trading portal which networks the existing APMC mandis to create a unified national market for agricultural commodities.",
		Eligibility: "Farmers, Traders, Buyers",
		Link:        "https://enam.gov.in/",
		Category:    "Market Access",
	},
	{
		Title:       "Kisan Credit Card (KCC)",
		Description: "Provides adequate and timely credit support from the banking system under a single window with flexible and simplified procedure.",
		Eligibility: "All farmers, tenant farmers, share croppers",
		Link:        "https://myscheme.gov.in/schemes/kcc",
		Category:    "Credit",
	},
	{
		Title:       "Paramparagat Krishi Vikas Yojana (PKVY)",
		Description: "Promotes organic farming through adoption of organic village by cluster approach and PGS certification.",
		Eligibility: "Farmers groups",
		Link:        "https://pgsindia-ncof.gov.in/pkvy/index.aspx",
		Category:    "Organic Farming",
	},
}

// List returns the catalog, optionally filtered by exact category.
func List(category string) []Scheme {
	if category == "" {
		out := make([]Scheme, len(catalog))
		copy(out, catalog)
		return out
	}
	out := make([]Scheme, 0, len(catalog))
	for _, s := range catalog {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}
