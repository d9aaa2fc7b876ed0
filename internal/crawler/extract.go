package crawler

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/prospect-scout/internal/model"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\+?[0-9]?[\s\-.]?\(?[0-9]{3}\)?[\s\-.]?[0-9]{3}[\s\-.]?[0-9]{4}`)

	priceRes = []*regexp.Regexp{
		regexp.MustCompile(`\$\s*\d{1,3}(?:,\d{3})*(?:\.\d{2})?`),
		regexp.MustCompile(`(?i)\d{1,3}(?:,\d{3})*(?:\.\d{2})?\s*(?:USD|dollars?)`),
		regexp.MustCompile(`(?i)from\s*\$\d+`),
		regexp.MustCompile(`(?i)starting\s*(?:at\s*)?\$\d+`),
	}

	employeeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*\+?\s*employees`),
		regexp.MustCompile(`(?i)team\s*of\s*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*\+?\s*people`),
	}
	foundingYearRe = regexp.MustCompile(`(?i)(?:founded|established|since)\s*(?:in\s*)?(\d{4})`)

	productSectionRe = regexp.MustCompile(`(?i)product|solution|feature`)
)

var addressIndicators = []string{"address", "location", "office", "headquarters"}

var pricingTableVocab = []string{"price", "cost", "plan", "subscription"}

var industryVocab = []string{
	"healthcare", "education", "finance", "retail", "manufacturing",
	"sports", "fitness", "hospitality", "real estate", "legal",
	"construction", "automotive", "agriculture", "logistics",
}

// maxProductDescription caps product-section text carried per section.
const maxProductDescription = 500

// ExtractPage turns raw HTML into a structured CrawlPage. Never fails:
// malformed HTML degrades to partial extraction with the Error field set.
func ExtractPage(rawURL string, body []byte) model.CrawlPage {
	page := model.CrawlPage{URL: rawURL}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		page.Error = err.Error()
		return page
	}
	doc.Find("script, style, noscript").Remove()

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))

	for level := 1; level <= 6; level++ {
		doc.Find(fmt.Sprintf("h%d", level)).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				page.Headings = append(page.Headings, model.Heading{Level: level, Text: text})
			}
		})
	}

	page.Text = visibleText(doc)
	page.Contact = extractContact(page.Text)
	page.Pricing = extractPricing(doc, page.Text)
	page.Products = extractProducts(doc)
	page.Company = extractCompany(page.Text)
	return page
}

// Link is one same-domain outbound link with its anchor text.
type Link struct {
	URL    string
	Anchor string
}

// ExtractLinks returns the deduplicated same-domain links found in the page,
// in encounter order, with fragments stripped and relative URLs resolved
// against baseURL.
func ExtractLinks(body []byte, baseURL string) []Link {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []Link
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Host, base.Host) {
			return
		}
		resolved.Fragment = ""
		u := resolved.String()
		if seen[u] {
			return
		}
		seen[u] = true
		links = append(links, Link{
			URL:    u,
			Anchor: strings.Join(strings.Fields(s.Text()), " "),
		})
	})
	return links
}

// visibleText extracts the page's text content with blank lines dropped.
func visibleText(doc *goquery.Document) string {
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

func extractContact(text string) model.ContactInfo {
	var info model.ContactInfo

	seen := make(map[string]bool)
	for _, email := range emailRe.FindAllString(text, -1) {
		if !seen[email] {
			seen[email] = true
			info.Emails = append(info.Emails, email)
		}
	}

	for _, phone := range phoneRe.FindAllString(text, -1) {
		if p := strings.TrimSpace(phone); len(p) > 7 {
			info.Phones = append(info.Phones, p)
		}
	}

	for _, indicator := range addressIndicators {
		re := regexp.MustCompile(`(?i)` + indicator + `[:\s]+([^.!?\n]{1,160})`)
		if m := re.FindStringSubmatch(text); m != nil {
			if info.Addresses == nil {
				info.Addresses = make(map[string]string)
			}
			info.Addresses[indicator] = strings.TrimSpace(m[1])
		}
	}
	return info
}

func extractPricing(doc *goquery.Document, text string) []model.PricingSignal {
	var signals []model.PricingSignal

	for _, re := range priceRes {
		for _, amount := range re.FindAllString(text, -1) {
			signals = append(signals, model.PricingSignal{
				Kind:   "amount",
				Amount: strings.TrimSpace(amount),
			})
		}
	}

	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		tableText := s.Text()
		lower := strings.ToLower(tableText)
		for _, word := range pricingTableVocab {
			if strings.Contains(lower, word) {
				signals = append(signals, model.PricingSignal{
					Kind:    "table",
					Content: strings.TrimSpace(tableText),
				})
				return
			}
		}
	})
	return signals
}

func extractProducts(doc *goquery.Document) []model.ProductSection {
	var sections []model.ProductSection
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if !productSectionRe.MatchString(class) && !productSectionRe.MatchString(id) {
			return
		}

		title := "Product"
		if h := s.Find("h1, h2, h3, h4").First(); h.Length() > 0 {
			if t := strings.TrimSpace(h.Text()); t != "" {
				title = t
			}
		}

		desc := strings.Join(strings.Fields(s.Text()), " ")
		if len(desc) > maxProductDescription {
			desc = desc[:maxProductDescription]
		}
		sections = append(sections, model.ProductSection{Title: title, Description: desc})
	})
	return sections
}

func extractCompany(text string) model.CompanySignals {
	var signals model.CompanySignals

	for _, re := range employeeRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			signals.EmployeeCounts = append(signals.EmployeeCounts, m[1])
		}
	}

	for _, m := range foundingYearRe.FindAllStringSubmatch(text, -1) {
		signals.FoundingYears = append(signals.FoundingYears, m[1])
	}

	lower := strings.ToLower(text)
	for _, industry := range industryVocab {
		if strings.Contains(lower, industry) {
			signals.Industries = append(signals.Industries, industry)
		}
	}
	return signals
}
