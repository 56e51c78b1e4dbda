// Package analytics derives pipeline statistics from the live job and
// application collections. Snapshots are computed on demand and never stored.
package analytics

import (
	"math"
	"time"

	"talent-track/internal/domain/application"
	"talent-track/internal/domain/job"

	"github.com/google/uuid"
)

const (
	lowConversionPercent   = 10
	slowTimeToHireDays     = 30
	noOfferApplicationsMin = 10
	manyOpenJobs           = 5
)

const (
	RecLowConversion = "Low interview conversion rate. Consider reviewing job requirements or screening criteria."
	RecSlowHiring    = "Average time-to-hire exceeds 30 days. Consider streamlining the interview process."
	RecNoOffers      = "No offers extended yet despite many applications. Review candidate-job fit."
	RecManyOpenJobs  = "Multiple open positions. Consider accelerated hiring strategies."
	RecNoApplicants  = "No applications yet. Consider promoting job postings."
)

type State struct {
	Applications []application.Application
	Jobs         []job.Job
}

type Options struct {
	// FreezeTimeToHire measures time-to-hire up to OfferedAt when it is set
	// instead of up to now.
	FreezeTimeToHire bool
}

type StatusCounts struct {
	Submitted    int `json:"submitted"`
	ManualReview int `json:"manual_review"`
	Screening    int `json:"screening"`
	TestInvited  int `json:"test_invited"`
	Interview    int `json:"interview"`
	Offer        int `json:"offer"`
	Rejected     int `json:"rejected"`
}

type ConversionRates struct {
	ApplicationToInterview int `json:"application_to_interview"`
	ApplicationToOffer     int `json:"application_to_offer"`
	ScreeningToInterview   int `json:"screening_to_interview"`
}

type TimeToHire struct {
	Average int `json:"average"`
	Min     int `json:"min"`
	Max     int `json:"max"`
}

type JobPerformance struct {
	JobID        uuid.UUID  `json:"job_id"`
	Title        string     `json:"title"`
	Status       job.Status `json:"status"`
	Applications int        `json:"applications"`
	Offers       int        `json:"offers"`
	AverageScore int        `json:"average_score"`
}

type Funnel struct {
	Applications int `json:"applications"`
	Screened     int `json:"screened"`
	Interviewed  int `json:"interviewed"`
	Offers       int `json:"offers"`
}

type Snapshot struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalJobs       int              `json:"total_jobs"`
	OpenJobs        int              `json:"open_jobs"`
	Total           int              `json:"total_applications"`
	StatusCounts    StatusCounts     `json:"status_counts"`
	ConversionRates ConversionRates  `json:"conversion_rates"`
	TimeToHire      TimeToHire       `json:"time_to_hire"`
	JobPerformance  []JobPerformance `json:"job_performance"`
	Funnel          Funnel           `json:"hiring_funnel"`
	Recommendations []string         `json:"recommendations"`
}

// Analyze is total: every ratio guards its denominator and malformed records
// only ever contribute zeros.
func Analyze(state State, now time.Time, opts ...Options) Snapshot {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	apps := state.Applications
	counts := countStatuses(apps)
	total := len(apps)

	snap := Snapshot{
		GeneratedAt:  now,
		TotalJobs:    len(state.Jobs),
		OpenJobs:     countOpenJobs(state.Jobs),
		Total:        total,
		StatusCounts: counts,
		ConversionRates: ConversionRates{
			ApplicationToInterview: Percent(counts.Interview, total),
			ApplicationToOffer:     Percent(counts.Offer, total),
			ScreeningToInterview:   Percent(counts.Interview, counts.Screening),
		},
		TimeToHire:     timeToHire(apps, now, opt),
		JobPerformance: jobPerformance(state.Jobs, apps),
		Funnel: Funnel{
			Applications: total,
			Screened:     total - counts.Submitted,
			Interviewed:  counts.Interview,
			Offers:       counts.Offer,
		},
	}
	snap.Recommendations = recommendations(snap)
	return snap
}

// Percent returns part/whole as a rounded percentage, or 0 for an empty whole.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func countStatuses(apps []application.Application) StatusCounts {
	var c StatusCounts
	for _, a := range apps {
		switch a.Status {
		case application.StatusSubmitted:
			c.Submitted++
		case application.StatusManualReview:
			c.ManualReview++
		case application.StatusScreening:
			c.Screening++
		case application.StatusTestInvited:
			c.TestInvited++
		case application.StatusPhoneInterview, application.StatusInterview:
			c.Interview++
		case application.StatusOffer:
			c.Offer++
		case application.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

func countOpenJobs(jobs []job.Job) int {
	n := 0
	for _, j := range jobs {
		if j.IsOpen() {
			n++
		}
	}
	return n
}

func timeToHire(apps []application.Application, now time.Time, opt Options) TimeToHire {
	days := make([]int, 0)
	for _, a := range apps {
		if a.Status != application.StatusOffer || a.CreatedAt.IsZero() {
			continue
		}
		end := now
		if opt.FreezeTimeToHire && a.OfferedAt != nil {
			end = *a.OfferedAt
		}
		days = append(days, int(math.Floor(end.Sub(a.CreatedAt).Hours()/24)))
	}
	if len(days) == 0 {
		return TimeToHire{}
	}

	out := TimeToHire{Min: days[0], Max: days[0]}
	sum := 0
	for _, d := range days {
		sum += d
		if d < out.Min {
			out.Min = d
		}
		if d > out.Max {
			out.Max = d
		}
	}
	out.Average = int(math.Round(float64(sum) / float64(len(days))))
	return out
}

func jobPerformance(jobs []job.Job, apps []application.Application) []JobPerformance {
	type acc struct {
		total, offers, scored, scoreSum int
	}
	byJob := make(map[uuid.UUID]*acc, len(jobs))
	for _, j := range jobs {
		byJob[j.ID] = &acc{}
	}
	for _, a := range apps {
		s, ok := byJob[a.JobID]
		if !ok {
			continue
		}
		s.total++
		if a.Status == application.StatusOffer {
			s.offers++
		}
		if a.AIScore != nil {
			s.scored++
			s.scoreSum += *a.AIScore
		}
	}

	out := make([]JobPerformance, 0, len(jobs))
	for _, j := range jobs {
		s := byJob[j.ID]
		avg := 0
		if s.scored > 0 {
			avg = int(math.Round(float64(s.scoreSum) / float64(s.scored)))
		}
		out = append(out, JobPerformance{
			JobID:        j.ID,
			Title:        j.Title,
			Status:       j.Status,
			Applications: s.total,
			Offers:       s.offers,
			AverageScore: avg,
		})
	}
	return out
}

func recommendations(s Snapshot) []string {
	recs := make([]string, 0)
	if s.Total > 0 && s.ConversionRates.ApplicationToInterview < lowConversionPercent {
		recs = append(recs, RecLowConversion)
	}
	if s.TimeToHire.Average > slowTimeToHireDays {
		recs = append(recs, RecSlowHiring)
	}
	if s.StatusCounts.Offer == 0 && s.Total > noOfferApplicationsMin {
		recs = append(recs, RecNoOffers)
	}
	if s.OpenJobs > manyOpenJobs {
		recs = append(recs, RecManyOpenJobs)
	}
	if s.Total == 0 {
		recs = append(recs, RecNoApplicants)
	}
	return recs
}
