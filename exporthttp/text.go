package exporthttp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/arun0009/httpmetrics/metrics"
)

// WriteText serializes a registry snapshot in the Prometheus text exposition
// format (version 0.0.4): a # HELP and # TYPE header per family followed by
// one line per sample, histograms rendered as cumulative _bucket series plus
// _sum and _count.
func WriteText(w io.Writer, families []metrics.FamilySnapshot) error {
	for _, fam := range families {
		if fam.Help != "" {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n", fam.Name, escapeHelp(fam.Help)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# TYPE %s %s\n", fam.Name, fam.Kind); err != nil {
			return err
		}
		for _, s := range fam.Samples {
			if err := writeSample(w, fam, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSample(w io.Writer, fam metrics.FamilySnapshot, s metrics.Sample) error {
	if len(s.LabelValues) != len(fam.LabelNames) {
		return fmt.Errorf("exporthttp: %s sample has %d label values, family declares %d",
			fam.Name, len(s.LabelValues), len(fam.LabelNames))
	}
	if fam.Kind != metrics.KindHistogram {
		_, err := fmt.Fprintf(w, "%s%s %s\n",
			fam.Name, labelString(fam.LabelNames, s.LabelValues, "", ""), formatFloat(s.Value))
		return err
	}

	h := s.Histogram
	if h == nil || len(h.Counts) != len(h.Bounds)+1 {
		return fmt.Errorf("exporthttp: malformed histogram sample for %s", fam.Name)
	}
	for i, bound := range h.Bounds {
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n",
			fam.Name, labelString(fam.LabelNames, s.LabelValues, "le", formatFloat(bound)), h.Counts[i]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n",
		fam.Name, labelString(fam.LabelNames, s.LabelValues, "le", "+Inf"), h.Counts[len(h.Counts)-1]); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s_sum%s %s\n",
		fam.Name, labelString(fam.LabelNames, s.LabelValues, "", ""), formatFloat(h.Sum)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s_count%s %d\n",
		fam.Name, labelString(fam.LabelNames, s.LabelValues, "", ""), h.Count)
	return err
}

// labelString renders {name="value",...}, appending the extra pair (used for
// le) when extraName is non-empty. It returns "" for a label-less sample.
func labelString(names, values []string, extraName, extraValue string) string {
	if len(names) == 0 && extraName == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, n := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(n)
		b.WriteString(`="`)
		b.WriteString(escapeLabelValue(values[i]))
		b.WriteByte('"')
	}
	if extraName != "" {
		if len(names) > 0 {
			b.WriteByte(',')
		}
		b.WriteString(extraName)
		b.WriteString(`="`)
		b.WriteString(escapeLabelValue(extraValue))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabelValue(v string) string { return labelEscaper.Replace(v) }

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)

func escapeHelp(h string) string { return helpEscaper.Replace(h) }

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, +1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
