package campaign

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Counters is the raw counter set reported by an ad platform.
type Counters struct {
	Spend       float64 `json:"spend" validate:"finite,gte=0"`
	Impressions int64   `json:"impressions" validate:"gte=0"`
	Clicks      int64   `json:"clicks" validate:"gte=0,ltefield=Impressions"`
	Conversions int64   `json:"conversions" validate:"gte=0,ltefield=Clicks"`
	Revenue     float64 `json:"revenue" validate:"finite,gte=0"`
}

// Snapshot captures a campaign's totals over a reporting period.
// Construct through NewSnapshot and treat as read-only afterwards.
type Snapshot struct {
	Name        string    `json:"name"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end" validate:"omitempty,gtefield=PeriodStart"`
	Counters
	MetaPixelRevenue *float64            `json:"meta_pixel_revenue,omitempty" validate:"omitempty,finite,gte=0"`
	Platforms        map[string]Counters `json:"platforms,omitempty" validate:"omitempty,dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// gte alone lets +Inf through and reports NaN as negative.
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(err)
	}
	return v
}

func isFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return true
}

// NewSnapshot validates s and returns a copy that shares no mutable state
// with the argument.
func NewSnapshot(s Snapshot) (Snapshot, error) {
	if err := validate.Struct(s); err != nil {
		return Snapshot{}, describe(err)
	}
	out := s
	if s.MetaPixelRevenue != nil {
		pixel := *s.MetaPixelRevenue
		out.MetaPixelRevenue = &pixel
	}
	out.Platforms = nil
	if len(s.Platforms) > 0 {
		out.Platforms = make(map[string]Counters, len(s.Platforms))
		for name, c := range s.Platforms {
			out.Platforms[name] = c
		}
	}
	return out, nil
}

// Days returns the inclusive number of calendar days in the period, or 0
// when either bound is missing.
func (s Snapshot) Days() int {
	if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
		return 0
	}
	start := truncateDay(s.PeriodStart)
	end := truncateDay(s.PeriodEnd)
	return int(end.Sub(start).Hours()/24) + 1
}

// PixelRevenue returns the Meta pixel revenue when the snapshot carries one.
func (s Snapshot) PixelRevenue() (float64, bool) {
	if s.MetaPixelRevenue == nil {
		return 0, false
	}
	return *s.MetaPixelRevenue, true
}

// Platform returns the breakdown for a single platform.
func (s Snapshot) Platform(name string) (Counters, bool) {
	c, ok := s.Platforms[name]
	return c, ok
}

// PlatformNames lists breakdown platforms by descending spend, then name.
func (s Snapshot) PlatformNames() []string {
	names := make([]string, 0, len(s.Platforms))
	for name := range s.Platforms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Platforms[names[i]], s.Platforms[names[j]]
		if a.Spend != b.Spend {
			return a.Spend > b.Spend
		}
		return names[i] < names[j]
	})
	return names
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Snapshot.")
		switch fe.Tag() {
		case "finite":
			details = append(details, fmt.Sprintf("%s must be a finite number", field))
		case "gte":
			details = append(details, fmt.Sprintf("%s must not be negative", field))
		case "ltefield":
			details = append(details, fmt.Sprintf("%s must not exceed %s", field, fe.Param()))
		case "gtefield":
			details = append(details, fmt.Sprintf("%s must not precede %s", field, fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(details, "; "))
}
