package observability

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Metric families in the Prometheus text format (version 0.0.4). Series are
// keyed by their rendered label set, so exposition order is the sorted label
// string. Every method accepts a nil receiver.

type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
	return err
}

// valueVec backs counters and gauges.
type valueVec struct {
	family
	mu   sync.Mutex
	vals map[string]float64
}

func newValueVec(name, help, kind string, labels []string) *valueVec {
	return &valueVec{family: family{name: name, help: help, kind: kind, labels: labels}, vals: map[string]float64{}}
}

func (v *valueVec) update(labelValues []string, fn func(old float64) float64) {
	if v == nil {
		return
	}
	key := labelString(v.labels, labelValues)
	v.mu.Lock()
	v.vals[key] = fn(v.vals[key])
	v.mu.Unlock()
}

func (v *valueVec) get(labelValues []string) float64 {
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vals[labelString(v.labels, labelValues)]
}

func (v *valueVec) WritePrometheus(w io.Writer) error {
	if v == nil {
		return nil
	}
	if err := v.header(w); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, key := range sortedKeys(v.vals) {
		if _, err := fmt.Fprintf(w, "%s%s %s\n", v.name, key, formatValue(v.vals[key])); err != nil {
			return err
		}
	}
	return nil
}

// CounterVec only goes up; negative adds are dropped.
type CounterVec struct{ *valueVec }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{newValueVec(name, help, "counter", labels)}
}

func (c *CounterVec) Inc(labelValues ...string) { c.Add(1, labelValues...) }

func (c *CounterVec) Add(delta float64, labelValues ...string) {
	if c == nil || delta < 0 {
		return
	}
	c.update(labelValues, func(old float64) float64 { return old + delta })
}

func (c *CounterVec) Value(labelValues ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(labelValues)
}

type GaugeVec struct{ *valueVec }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{newValueVec(name, help, "gauge", labels)}
}

func (g *GaugeVec) Set(v float64, labelValues ...string) {
	if g == nil {
		return
	}
	g.update(labelValues, func(float64) float64 { return v })
}

// Gauge is an unlabelled GaugeVec.
type Gauge struct{ *valueVec }

func NewGauge(name, help string) *Gauge {
	return &Gauge{newValueVec(name, help, "gauge", nil)}
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(delta float64) {
	if g == nil {
		return
	}
	g.update(nil, func(old float64) float64 { return old + delta })
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.get(nil)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	family
	bounds []float64
	mu     sync.Mutex
	series map[string]*histogramSeries
}

type histogramSeries struct {
	cumulative []uint64 // cumulative[i] counts observations <= bounds[i]
	count      uint64
	sum        float64
}

// NewHistogramVec uses defaultBuckets when bounds is empty. Bounds must be
// ascending.
func NewHistogramVec(name, help string, labels []string, bounds []float64) *HistogramVec {
	if len(bounds) == 0 {
		bounds = defaultBuckets
	}
	return &HistogramVec{
		family: family{name: name, help: help, kind: "histogram", labels: labels},
		bounds: bounds,
		series: map[string]*histogramSeries{},
	}
}

func (h *HistogramVec) Observe(v float64, labelValues ...string) {
	if h == nil {
		return
	}
	key := labelString(h.labels, labelValues)
	first := sort.SearchFloat64s(h.bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[key]
	if s == nil {
		s = &histogramSeries{cumulative: make([]uint64, len(h.bounds))}
		h.series[key] = s
	}
	for i := first; i < len(h.bounds); i++ {
		s.cumulative[i]++
	}
	s.count++
	s.sum += v
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := h.header(w); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	var b strings.Builder
	for _, key := range sortedKeys(h.series) {
		s := h.series[key]
		for i, bound := range h.bounds {
			fmt.Fprintf(&b, "%s_bucket%s %d\n", h.name, withLe(key, formatValue(bound)), s.cumulative[i])
		}
		fmt.Fprintf(&b, "%s_bucket%s %d\n", h.name, withLe(key, "+Inf"), s.count)
		fmt.Fprintf(&b, "%s_sum%s %s\n", h.name, key, formatValue(s.sum))
		fmt.Fprintf(&b, "%s_count%s %d\n", h.name, key, s.count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// labelString renders {name="value",...}. Missing or empty values become
// "unknown" so a series never has an empty label.
func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	pairs := make([]string, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		pairs[i] = name + `="` + labelEscaper.Replace(val) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// withLe adds the le label to an already rendered label set.
func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(labels, "}") + `,le="` + le + `"}`
}
