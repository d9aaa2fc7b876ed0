package model

// Heading is one HTML heading with its level (1-6).
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// ContactInfo holds contact signals extracted from a page.
type ContactInfo struct {
	Emails    []string          `json:"emails,omitempty"`
	Phones    []string          `json:"phones,omitempty"`
	Addresses map[string]string `json:"addresses,omitempty"` // indicator word -> surrounding text
}

// PricingSignal is one pricing mention found on a page.
type PricingSignal struct {
	Kind    string `json:"kind"` // "amount" or "table"
	Amount  string `json:"amount,omitempty"`
	Content string `json:"content,omitempty"`
}

// ProductSection is a block whose class or id matched product vocabulary.
type ProductSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CompanySignals holds coarse size/maturity mentions from page text.
type CompanySignals struct {
	EmployeeCounts []string `json:"employee_counts,omitempty"`
	FoundingYears  []string `json:"founding_years,omitempty"`
	Industries     []string `json:"industries,omitempty"`
}

// CrawlPage is one fetched and extracted page. Non-seed pages additionally
// carry the link score and anchor text that led to them.
type CrawlPage struct {
	URL         string           `json:"url"`
	StatusCode  int              `json:"status_code"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Headings    []Heading        `json:"headings,omitempty"`
	Text        string           `json:"text"`
	Contact     ContactInfo      `json:"contact"`
	Pricing     []PricingSignal  `json:"pricing,omitempty"`
	Products    []ProductSection `json:"products,omitempty"`
	Company     CompanySignals   `json:"company"`
	LinkScore   float64          `json:"link_score,omitempty"`
	AnchorText  string           `json:"anchor_text,omitempty"`
	Error       string           `json:"error,omitempty"` // hard extraction failure, page kept partial
}

// CrawlResult is the outcome of one priority crawl. Pages are ordered seed
// first, then descending link score.
type CrawlResult struct {
	SiteURL     string      `json:"site_url"`
	BaseURL     string      `json:"base_url"`
	Pages       []CrawlPage `json:"pages"`
	TotalPages  int         `json:"total_pages"`
	ContentSize int         `json:"content_size"` // sum of extracted text bytes
	VisitedURLs []string    `json:"visited_urls"`
}
