// Package export renders analytics, shortlists and the audit trail as CSV text.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"talent-track/internal/domain/analytics"
)

const DefaultReportTitle = "Hiring Pipeline Report"

const (
	SectionExecutiveSummary = "EXECUTIVE SUMMARY"
	SectionKeyMetrics       = "KEY METRICS"
	SectionHiringFunnel     = "HIRING FUNNEL"
)

// Field is one key-value line of a report section. Order is preserved on output.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Report struct {
	Title            string    `json:"title"`
	GeneratedAt      time.Time `json:"generated_at"`
	ExecutiveSummary []Field   `json:"executive_summary"`
	KeyMetrics       []Field   `json:"key_metrics"`
	HiringFunnel     []Field   `json:"hiring_funnel"`
}

func BuildReport(s analytics.Snapshot, title string, now time.Time) Report {
	if strings.TrimSpace(title) == "" {
		title = DefaultReportTitle
	}
	return Report{
		Title:       title,
		GeneratedAt: now,
		ExecutiveSummary: []Field{
			{"Total Jobs", strconv.Itoa(s.TotalJobs)},
			{"Open Jobs", strconv.Itoa(s.OpenJobs)},
			{"Total Applications", strconv.Itoa(s.Total)},
			{"Offers Extended", strconv.Itoa(s.StatusCounts.Offer)},
			{"Rejected", strconv.Itoa(s.StatusCounts.Rejected)},
		},
		KeyMetrics: []Field{
			{"Application to Interview (%)", strconv.Itoa(s.ConversionRates.ApplicationToInterview)},
			{"Application to Offer (%)", strconv.Itoa(s.ConversionRates.ApplicationToOffer)},
			{"Screening to Interview (%)", strconv.Itoa(s.ConversionRates.ScreeningToInterview)},
			{"Average Time to Hire (days)", strconv.Itoa(s.TimeToHire.Average)},
			{"Min Time to Hire (days)", strconv.Itoa(s.TimeToHire.Min)},
			{"Max Time to Hire (days)", strconv.Itoa(s.TimeToHire.Max)},
		},
		HiringFunnel: []Field{
			{"Applications", strconv.Itoa(s.Funnel.Applications)},
			{"Screened", strconv.Itoa(s.Funnel.Screened)},
			{"Interviewed", strconv.Itoa(s.Funnel.Interviewed)},
			{"Offers", strconv.Itoa(s.Funnel.Offers)},
		},
	}
}

// ReportCSV flattens r into comma-separated lines. Values are written as-is;
// callers must not put delimiters in keys or values.
func ReportCSV(r Report) string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Generated At,%s\n", r.GeneratedAt.UTC().Format(time.RFC3339))

	writeSection(&b, SectionExecutiveSummary, r.ExecutiveSummary)
	writeSection(&b, SectionKeyMetrics, r.KeyMetrics)
	writeSection(&b, SectionHiringFunnel, r.HiringFunnel)
	return b.String()
}

func writeSection(b *strings.Builder, header string, fields []Field) {
	b.WriteString("\n")
	b.WriteString(header)
	b.WriteString("\n")
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(",")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
}
