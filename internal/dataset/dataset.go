// Package dataset loads campaign snapshots and the comparisons drawn
// between them from YAML.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidDataset wraps every structural problem found while loading.
var ErrInvalidDataset = errors.New("dataset: invalid")

// ShareTolerance is the allowed deviation of period shares from 100%.
const ShareTolerance = 0.01

const dateLayout = "2006-01-02"

// Dataset is an immutable, validated set of campaigns.
type Dataset struct {
	Currency     string
	Fingerprint  string
	Comparisons  []Comparison
	Attributions []Attribution
	Platforms    []string
	Pixels       []string
	Warnings     []string

	order     []string
	campaigns map[string]campaign.Snapshot
}

// Comparison names two campaigns shown side by side.
type Comparison struct {
	ID    string
	Title string
	A     string
	B     string
}

// Attribution splits one campaign into sub-periods.
type Attribution struct {
	Campaign string
	Periods  []PeriodShare
}

// PeriodShare is the caller-supplied split for a sub-period.
type PeriodShare struct {
	Label             string
	Start             time.Time
	End               time.Time
	SalesSharePercent float64
	SpendRatio        float64
}

type fileModel struct {
	Currency           string             `yaml:"currency"`
	Campaigns          []campaignModel    `yaml:"campaigns"`
	Comparisons        []comparisonModel  `yaml:"comparisons"`
	Attributions       []attributionModel `yaml:"attributions"`
	PlatformBreakdowns []string           `yaml:"platform_breakdowns"`
	PixelAttributions  []string           `yaml:"pixel_attributions"`
}

type countersModel struct {
	Spend       float64 `yaml:"spend"`
	Impressions int64   `yaml:"impressions"`
	Clicks      int64   `yaml:"clicks"`
	Conversions int64   `yaml:"conversions"`
	Revenue     float64 `yaml:"revenue"`
}

type campaignModel struct {
	countersModel `yaml:",inline"`

	ID               string                   `yaml:"id"`
	Name             string                   `yaml:"name"`
	Start            string                   `yaml:"start"`
	End              string                   `yaml:"end"`
	MetaPixelRevenue *float64                 `yaml:"meta_pixel_revenue"`
	Platforms        map[string]countersModel `yaml:"platforms"`
}

type comparisonModel struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	A     string `yaml:"a"`
	B     string `yaml:"b"`
}

type attributionModel struct {
	Campaign string        `yaml:"campaign"`
	Periods  []periodModel `yaml:"periods"`
}

type periodModel struct {
	Label      string   `yaml:"label"`
	Start      string   `yaml:"start"`
	End        string   `yaml:"end"`
	SalesShare float64  `yaml:"sales_share"`
	SpendRatio *float64 `yaml:"spend_ratio"`
}

// Default returns the embedded EDGE and Chimperator dataset.
func Default() (*Dataset, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads a dataset from disk. An empty path loads Default.
func LoadFile(path string) (*Dataset, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Load parses and validates a YAML dataset.
func Load(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}
	var model fileModel
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	sum := blake2b.Sum256(raw)
	ds := &Dataset{
		Currency:    strings.ToUpper(strings.TrimSpace(model.Currency)),
		Fingerprint: hex.EncodeToString(sum[:8]),
		campaigns:   make(map[string]campaign.Snapshot, len(model.Campaigns)),
	}
	if ds.Currency == "" {
		ds.Currency = "EUR"
	}

	for _, cm := range model.Campaigns {
		if cm.ID == "" {
			return nil, fmt.Errorf("%w: campaign without id", ErrInvalidDataset)
		}
		if _, dup := ds.campaigns[cm.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate campaign %q", ErrInvalidDataset, cm.ID)
		}
		snap, err := cm.snapshot()
		if err != nil {
			return nil, fmt.Errorf("dataset: campaign %q: %w", cm.ID, err)
		}
		ds.campaigns[cm.ID] = snap
		ds.order = append(ds.order, cm.ID)
	}

	seen := make(map[string]struct{}, len(model.Comparisons))
	for _, c := range model.Comparisons {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: comparison without id", ErrInvalidDataset)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate comparison %q", ErrInvalidDataset, c.ID)
		}
		seen[c.ID] = struct{}{}
		if err := ds.requireCampaigns(c.A, c.B); err != nil {
			return nil, fmt.Errorf("comparison %q: %w", c.ID, err)
		}
		title := c.Title
		if title == "" {
			title = ds.campaigns[c.A].Name + " vs " + ds.campaigns[c.B].Name
		}
		ds.Comparisons = append(ds.Comparisons, Comparison{ID: c.ID, Title: title, A: c.A, B: c.B})
	}

	for _, am := range model.Attributions {
		attr, warnings, err := ds.attribution(am)
		if err != nil {
			return nil, err
		}
		ds.Attributions = append(ds.Attributions, attr)
		ds.Warnings = append(ds.Warnings, warnings...)
	}

	for _, id := range model.PlatformBreakdowns {
		if err := ds.requireCampaigns(id); err != nil {
			return nil, fmt.Errorf("platform breakdown: %w", err)
		}
		if len(ds.campaigns[id].Platforms) == 0 {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("campaign %q has no platform breakdown", id))
			continue
		}
		ds.Platforms = append(ds.Platforms, id)
	}
	for _, id := range model.PixelAttributions {
		if err := ds.requireCampaigns(id); err != nil {
			return nil, fmt.Errorf("pixel attribution: %w", err)
		}
		ds.Pixels = append(ds.Pixels, id)
	}
	return ds, nil
}

// Campaign returns a snapshot by id.
func (d *Dataset) Campaign(id string) (campaign.Snapshot, bool) {
	s, ok := d.campaigns[id]
	return s, ok
}

// CampaignIDs lists campaign ids in file order.
func (d *Dataset) CampaignIDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Comparison returns a comparison by id.
func (d *Dataset) Comparison(id string) (Comparison, bool) {
	for _, c := range d.Comparisons {
		if c.ID == id {
			return c, true
		}
	}
	return Comparison{}, false
}

func (d *Dataset) requireCampaigns(ids ...string) error {
	for _, id := range ids {
		if _, ok := d.campaigns[id]; !ok {
			return fmt.Errorf("%w: unknown campaign %q", ErrInvalidDataset, id)
		}
	}
	return nil
}

func (d *Dataset) attribution(am attributionModel) (Attribution, []string, error) {
	if err := d.requireCampaigns(am.Campaign); err != nil {
		return Attribution{}, nil, fmt.Errorf("attribution: %w", err)
	}
	snap := d.campaigns[am.Campaign]
	total := snap.Days()
	attr := Attribution{Campaign: am.Campaign}
	shares := make([]float64, 0, len(am.Periods))
	for _, pm := range am.Periods {
		start, end, err := parsePeriod(pm.Start, pm.End)
		if err != nil {
			return Attribution{}, nil, fmt.Errorf("%w: attribution %q period %q: %v", ErrInvalidDataset, am.Campaign, pm.Label, err)
		}
		if !finite(pm.SalesShare) || (pm.SpendRatio != nil && !finite(*pm.SpendRatio)) {
			return Attribution{}, nil, fmt.Errorf("%w: attribution %q period %q: sales_share and spend_ratio must be finite", ErrInvalidDataset, am.Campaign, pm.Label)
		}
		ps := PeriodShare{Label: pm.Label, Start: start, End: end, SalesSharePercent: pm.SalesShare}
		switch {
		case pm.SpendRatio != nil:
			ps.SpendRatio = *pm.SpendRatio
		case total > 0 && !start.IsZero() && !end.IsZero():
			days := int(end.Sub(start).Hours()/24) + 1
			ps.SpendRatio = float64(days) / float64(total)
		default:
			return Attribution{}, nil, fmt.Errorf("%w: attribution %q period %q needs dates or spend_ratio", ErrInvalidDataset, am.Campaign, pm.Label)
		}
		attr.Periods = append(attr.Periods, ps)
		shares = append(shares, pm.SalesShare)
	}
	var warnings []string
	if dev := campaign.ShareDeviation(shares...); math.Abs(dev) > ShareTolerance {
		warnings = append(warnings, fmt.Sprintf("attribution %q: sales shares sum to %.2f%%", am.Campaign, 100+dev))
	}
	return attr, warnings, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (cm campaignModel) snapshot() (campaign.Snapshot, error) {
	start, end, err := parsePeriod(cm.Start, cm.End)
	if err != nil {
		return campaign.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	name := cm.Name
	if name == "" {
		name = cm.ID
	}
	s := campaign.Snapshot{
		Name:             name,
		PeriodStart:      start,
		PeriodEnd:        end,
		Counters:         cm.countersModel.counters(),
		MetaPixelRevenue: cm.MetaPixelRevenue,
	}
	if len(cm.Platforms) > 0 {
		s.Platforms = make(map[string]campaign.Counters, len(cm.Platforms))
		for name, pc := range cm.Platforms {
			s.Platforms[name] = pc.counters()
		}
	}
	return campaign.NewSnapshot(s)
}

func (c countersModel) counters() campaign.Counters {
	return campaign.Counters{
		Spend:       c.Spend,
		Impressions: c.Impressions,
		Clicks:      c.Clicks,
		Conversions: c.Conversions,
		Revenue:     c.Revenue,
	}
}

func parsePeriod(start, end string) (time.Time, time.Time, error) {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = time.Parse(dateLayout, start); err != nil {
			return s, e, fmt.Errorf("start: %w", err)
		}
	}
	if end != "" {
		if e, err = time.Parse(dateLayout, end); err != nil {
			return s, e, fmt.Errorf("end: %w", err)
		}
	}
	return s, e, nil
}
