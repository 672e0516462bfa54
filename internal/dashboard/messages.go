package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/odyssey-erp/campaign-insights/internal/format"
)

// English text doubles as the message key; only translations are registered.
const (
	msgTitle        = "Campaign comparison"
	msgPlatforms    = "Platform breakdown"
	msgAttribution  = "Period attribution"
	msgPixel        = "Last-click vs Meta pixel"
	msgInsights     = "Key insights"
	msgMetric       = "Metric"
	msgMultiple     = "B / A"
	msgDays         = "days"
	msgSalesShare   = "Sales share"
	msgLastClick    = "Last-click revenue"
	msgPixelRevenue = "Pixel revenue"
	msgAdditional   = "Pixel-only revenue"

	msgSectionFinancial  = "Financial"
	msgSectionDuration   = "Duration & ROAS"
	msgSectionDaily      = "Daily averages"
	msgSectionEfficiency = "Efficiency"
	msgSectionVolume     = "Volume"

	msgSpend            = "Spend"
	msgRevenue          = "Revenue"
	msgConversions      = "Conversions"
	msgDuration         = "Duration (days)"
	msgROAS             = "ROAS"
	msgDailySpend       = "Daily spend"
	msgDailyRevenue     = "Daily revenue"
	msgDailyConversions = "Daily conversions"
	msgDailyImpressions = "Daily impressions"
	msgDailyClicks      = "Daily clicks"
	msgCPC              = "CPC"
	msgCTR              = "CTR"
	msgConversionRate   = "Conversion rate"
	msgImpressions      = "Impressions"
	msgClicks           = "Clicks"

	msgSpentMore      = "%[1]s spent %[2]sx more than %[3]s (%[4]s vs %[5]s)"
	msgEarnedMore     = "%[1]s generated %[2]sx more revenue than %[3]s (%[4]s vs %[5]s)"
	msgBetterROAS     = "%[1]s achieved a higher ROAS (%[2]s vs %[3]s)"
	msgRanLonger      = "%[1]s ran %[2]sx longer (%[3]s days vs %[4]s days)"
	msgSimilarLength  = "Both campaigns ran for a similar duration (%[1]s days vs %[2]s days)"
	msgDailySpendMore = "%[1]s spent %[2]sx more per day (%[3]s vs %[4]s)"
	msgBetterCTR      = "%[1]s achieved a higher CTR (%[2]s vs %[3]s)"
	msgTopPlatform    = "%[1]s was the dominant platform with %[2]s revenue at a ROAS of %[3]s"
	msgPixelMultiple  = "The Meta pixel reports %[1]sx the last-click revenue (%[2]s vs %[3]s)"
)

var german = map[string]string{
	msgTitle:        "Kampagnenvergleich",
	msgPlatforms:    "Plattform-Aufschlüsselung",
	msgAttribution:  "Zeitraum-Attribution",
	msgPixel:        "Last-Click vs. Meta-Pixel",
	msgInsights:     "Wichtigste Erkenntnisse",
	msgMetric:       "Kennzahl",
	msgMultiple:     "B / A",
	msgDays:         "Tage",
	msgSalesShare:   "Umsatzanteil",
	msgLastClick:    "Last-Click-Umsatz",
	msgPixelRevenue: "Pixel-Umsatz",
	msgAdditional:   "Nur-Pixel-Umsatz",

	msgSectionFinancial:  "Finanzen",
	msgSectionDuration:   "Dauer & ROAS",
	msgSectionDaily:      "Tagesdurchschnitte",
	msgSectionEfficiency: "Effizienz",
	msgSectionVolume:     "Volumen",

	msgSpend:            "Ausgaben",
	msgRevenue:          "Umsatz",
	msgConversions:      "Conversions",
	msgDuration:         "Dauer (Tage)",
	msgROAS:             "ROAS",
	msgDailySpend:       "Tägliche Ausgaben",
	msgDailyRevenue:     "Täglicher Umsatz",
	msgDailyConversions: "Tägliche Conversions",
	msgDailyImpressions: "Tägliche Impressionen",
	msgDailyClicks:      "Tägliche Klicks",
	msgCPC:              "CPC",
	msgCTR:              "CTR",
	msgConversionRate:   "Conversion-Rate",
	msgImpressions:      "Impressionen",
	msgClicks:           "Klicks",

	msgSpentMore:      "%[1]s gab %[2]s-mal so viel aus wie %[3]s (%[4]s vs. %[5]s)",
	msgEarnedMore:     "%[1]s erzielte %[2]s-mal so viel Umsatz wie %[3]s (%[4]s vs. %[5]s)",
	msgBetterROAS:     "%[1]s erzielte einen höheren ROAS (%[2]s vs. %[3]s)",
	msgRanLonger:      "%[1]s lief %[2]s-mal so lange (%[3]s Tage vs. %[4]s Tage)",
	msgSimilarLength:  "Beide Kampagnen liefen ähnlich lange (%[1]s Tage vs. %[2]s Tage)",
	msgDailySpendMore: "%[1]s gab pro Tag %[2]s-mal so viel aus (%[3]s vs. %[4]s)",
	msgBetterCTR:      "%[1]s erzielte eine höhere CTR (%[2]s vs. %[3]s)",
	msgTopPlatform:    "%[1]s war die dominante Plattform mit %[2]s Umsatz bei einem ROAS von %[3]s",
	msgPixelMultiple:  "Das Meta-Pixel weist das %[1]s-fache des Last-Click-Umsatzes aus (%[2]s vs. %[3]s)",
}

func newCatalog() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range []language.Tag{language.German, language.MustParse("de-DE")} {
		for key, msg := range german {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// printer pairs a locale's number formatter with its message printer.
type printer struct {
	*format.Formatter
	msg *message.Printer
}

func newPrinter(cat catalog.Catalog, locale format.Locale) printer {
	return printer{
		Formatter: format.New(locale),
		msg:       message.NewPrinter(locale.Tag, message.Catalog(cat)),
	}
}

func (p printer) T(key string, args ...any) string {
	return p.msg.Sprintf(key, args...)
}

func (p printer) labels() PageLabels {
	return PageLabels{
		Title:        p.T(msgTitle),
		Platforms:    p.T(msgPlatforms),
		Attribution:  p.T(msgAttribution),
		Pixel:        p.T(msgPixel),
		Insights:     p.T(msgInsights),
		Metric:       p.T(msgMetric),
		Multiple:     p.T(msgMultiple),
		Days:         p.T(msgDays),
		SalesShare:   p.T(msgSalesShare),
		LastClick:    p.T(msgLastClick),
		PixelRevenue: p.T(msgPixelRevenue),
		Additional:   p.T(msgAdditional),
		Spend:        p.T(msgSpend),
		Revenue:      p.T(msgRevenue),
		Conversions:  p.T(msgConversions),
		ROAS:         p.T(msgROAS),
		CTR:          p.T(msgCTR),
		CPC:          p.T(msgCPC),
	}
}
