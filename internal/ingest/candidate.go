// Package ingest normalises candidate records and fixture files into the
// domain types. Records may carry the applicant fields flat or nested under an
// "applicant" key; both shapes decode to the same application.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"talent-track/internal/domain/application"

	"github.com/mitchellh/mapstructure"
)

var ErrEmptyRecord = errors.New("empty candidate record")

const nestedKey = "applicant"

// aliases maps alternative spellings onto the canonical snake_case keys.
var aliases = map[string]string{
	"full_name":           "name",
	"email_address":       "email",
	"education":           "degree",
	"experience":          "experience_years",
	"years_experience":    "experience_years",
	"years_of_experience": "experience_years",
	"certificates":        "certifications",
	"linked_in":           "linkedin",
	"linkedin_url":        "linkedin",
	"phone_number":        "phone",
	"interview":           "interview_score",
}

// Candidate is the single tagged schema every record is decoded into.
type Candidate struct {
	Name            string   `mapstructure:"name"`
	Email           string   `mapstructure:"email"`
	Degree          string   `mapstructure:"degree"`
	ExperienceYears float64  `mapstructure:"experience_years"`
	Skills          []string `mapstructure:"skills"`
	Certifications  []string `mapstructure:"certifications"`
	LinkedIn        string   `mapstructure:"linkedin"`
	Address         string   `mapstructure:"address"`
	Phone           string   `mapstructure:"phone"`
	InterviewScore  *int     `mapstructure:"interview_score"`
}

// Normalize decodes a raw record. Malformed numeric fields degrade to zero
// instead of failing the record.
func Normalize(raw map[string]any) (Candidate, error) {
	flat := flatten(raw)
	if len(flat) == 0 {
		return Candidate{}, ErrEmptyRecord
	}

	var c Candidate
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &c,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			lenientNumberHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(flat); err != nil {
		return Candidate{}, fmt.Errorf("decode candidate: %w", err)
	}

	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Degree = strings.TrimSpace(c.Degree)
	c.LinkedIn = strings.TrimSpace(c.LinkedIn)
	c.Address = strings.TrimSpace(c.Address)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Skills = cleanList(c.Skills)
	c.Certifications = cleanList(c.Certifications)
	if math.IsNaN(c.ExperienceYears) || math.IsInf(c.ExperienceYears, 0) || c.ExperienceYears < 0 {
		c.ExperienceYears = 0
	}
	return c, nil
}

// Application converts the candidate into an unsaved application.
func (c Candidate) Application() application.Application {
	return application.Application{
		Name:            c.Name,
		Email:           c.Email,
		Degree:          c.Degree,
		ExperienceYears: c.ExperienceYears,
		Skills:          c.Skills,
		Certifications:  c.Certifications,
		LinkedIn:        c.LinkedIn,
		Address:         c.Address,
		Phone:           c.Phone,
		InterviewScore:  c.InterviewScore,
	}
}

// flatten lifts nested applicant fields to the top level, nested values
// winning over flat ones, and canonicalises the keys.
func flatten(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		key := canonicalKey(k)
		if key == nestedKey {
			continue
		}
		out[key] = v
	}
	for k, v := range raw {
		if canonicalKey(k) != nestedKey {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range nested {
				out[canonicalKey(nk)] = nv
			}
		}
	}
	return out
}

func canonicalKey(k string) string {
	key := toSnake(strings.TrimSpace(k))
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(b.String(), "__", "_")
}

func lenientNumberHook(from, to reflect.Type, data any) (any, error) {
	target := to
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	switch target.Kind() {
	case reflect.Float64, reflect.Int:
	default:
		return data, nil
	}

	if from.Kind() != reflect.String {
		return data, nil
	}

	s := strings.TrimSpace(data.(string))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// "5+ years" keeps its leading number, anything else counts as zero.
		f = leadingNumber(s)
	}
	if target.Kind() == reflect.Int {
		return int(math.Round(f)), nil
	}
	return f, nil
}

func leadingNumber(s string) float64 {
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
