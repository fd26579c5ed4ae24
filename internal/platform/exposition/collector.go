// Package exposition serves /metrics in the Prometheus text format. HTTP
// traffic is counted by middleware; dashboard gauges are derived from the
// store on every scrape.
package exposition

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"

	"github.com/neocare/neocare/internal/engine"
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store"
)

// Source is the slice of the store the gauges are computed from.
type Source interface {
	store.BedReader
	store.AlertReader
	store.MetricReader
}

// durationBuckets are request latency bounds in seconds.
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

const kpiWindow = "30d"

type requestKey struct {
	method, route, status string
}

type histogram struct {
	counts []uint64
	count  uint64
	sum    float64
}

// CounterFunc reports a monotonically increasing value at scrape time.
type CounterFunc struct {
	Name, Help string
	Value      func() float64
}

type Collector struct {
	src    Source
	rules  *rules.Holder
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	requests  map[requestKey]uint64
	durations map[string]*histogram

	counters []CounterFunc
}

func NewCollector(src Source, r *rules.Holder, logger zerolog.Logger) *Collector {
	return &Collector{
		src:       src,
		rules:     r,
		logger:    logger,
		now:       time.Now,
		requests:  make(map[requestKey]uint64),
		durations: make(map[string]*histogram),
	}
}

// AddCounter exposes an externally maintained counter, such as the change
// feed's message count.
func (c *Collector) AddCounter(cf CounterFunc) {
	c.counters = append(c.counters, cf)
}

// Middleware counts requests by route template so ids in the URL do not
// explode label cardinality.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			start := time.Now()
			err := next(ec)

			status := ec.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !ec.Response().Committed {
				status = he.Code
			}
			route := ec.Path()
			if route == "" {
				route = "unmatched"
			}
			c.observe(ec.Request().Method, route, status, time.Since(start))
			return err
		}
	}
}

func (c *Collector) observe(method, route string, status int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[requestKey{method, route, strconv.Itoa(status)}]++

	h, ok := c.durations[route]
	if !ok {
		h = &histogram{counts: make([]uint64, len(durationBuckets))}
		c.durations[route] = h
	}
	secs := d.Seconds()
	for i, ub := range durationBuckets {
		if secs <= ub {
			h.counts[i]++
		}
	}
	h.count++
	h.sum += secs
}

// Gather builds every metric family. Store failures drop the affected
// per-facility series and fall back to the KPI baseline; they never fail
// the scrape.
func (c *Collector) Gather(ctx context.Context) []*dto.MetricFamily {
	var out []*dto.MetricFamily
	out = append(out, c.httpFamilies()...)
	out = append(out, c.bedFamilies(ctx)...)
	out = append(out, c.alertFamily(ctx))
	out = append(out, c.kpiFamily(ctx))
	for _, cf := range c.counters {
		out = append(out, family(cf.Name, cf.Help, dto.MetricType_COUNTER, counterMetric(cf.Value())))
	}
	return out
}

// Handler renders Gather in the text exposition format.
func (c *Collector) Handler() echo.HandlerFunc {
	return func(ec echo.Context) error {
		format := expfmt.NewFormat(expfmt.TypeTextPlain)
		ec.Response().Header().Set(echo.HeaderContentType, string(format))
		ec.Response().WriteHeader(http.StatusOK)
		enc := expfmt.NewEncoder(ec.Response(), format)
		for _, mf := range c.Gather(ec.Request().Context()) {
			// The text format cannot carry a family without samples.
			if len(mf.Metric) == 0 {
				continue
			}
			if err := enc.Encode(mf); err != nil {
				c.logger.Error().Err(err).Str("family", mf.GetName()).Msg("encode metric family")
				return nil
			}
		}
		return nil
	}
}

func (c *Collector) httpFamilies() []*dto.MetricFamily {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]requestKey, 0, len(c.requests))
	for k := range c.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route != keys[j].route {
			return keys[i].route < keys[j].route
		}
		if keys[i].method != keys[j].method {
			return keys[i].method < keys[j].method
		}
		return keys[i].status < keys[j].status
	})
	reqs := make([]*dto.Metric, 0, len(keys))
	for _, k := range keys {
		m := counterMetric(float64(c.requests[k]))
		m.Label = labels("method", k.method, "route", k.route, "status", k.status)
		reqs = append(reqs, m)
	}

	routes := make([]string, 0, len(c.durations))
	for r := range c.durations {
		routes = append(routes, r)
	}
	sort.Strings(routes)
	durs := make([]*dto.Metric, 0, len(routes))
	for _, r := range routes {
		h := c.durations[r]
		buckets := make([]*dto.Bucket, len(durationBuckets))
		for i, ub := range durationBuckets {
			buckets[i] = &dto.Bucket{CumulativeCount: ptr(h.counts[i]), UpperBound: ptr(ub)}
		}
		durs = append(durs, &dto.Metric{
			Label: labels("route", r),
			Histogram: &dto.Histogram{
				SampleCount: ptr(h.count),
				SampleSum:   ptr(h.sum),
				Bucket:      buckets,
			},
		})
	}

	return []*dto.MetricFamily{
		family("neocare_http_requests_total", "HTTP requests by route, method and status.", dto.MetricType_COUNTER, reqs...),
		family("neocare_http_request_duration_seconds", "HTTP request latency by route.", dto.MetricType_HISTOGRAM, durs...),
	}
}

func (c *Collector) bedFamilies(ctx context.Context) []*dto.MetricFamily {
	rate := family("neocare_bed_occupancy_rate", "Occupied beds as a percentage of all beds.", dto.MetricType_GAUGE)
	total := family("neocare_beds_total", "Beds known per facility.", dto.MetricType_GAUGE)

	beds, err := c.src.ListBeds(ctx, store.BedFilter{})
	if err != nil {
		c.logger.Warn().Err(err).Msg("metrics: beds unavailable")
		return []*dto.MetricFamily{rate, total}
	}
	for _, f := range engine.AggregateOccupancy(beds) {
		lbl := labels("facility", f.FacilityName, "hospital_id", f.FacilityID.String())
		rate.Metric = append(rate.Metric, gaugeMetric(float64(f.OccupancyRate), lbl))
		total.Metric = append(total.Metric, gaugeMetric(float64(f.Total), lbl))
	}
	return []*dto.MetricFamily{rate, total}
}

func (c *Collector) alertFamily(ctx context.Context) *dto.MetricFamily {
	fam := family("neocare_active_alerts", "Unresolved alerts by category and severity.", dto.MetricType_GAUGE)

	alerts, err := c.src.ListActiveAlerts(ctx, store.AlertFilter{})
	if err != nil {
		c.logger.Warn().Err(err).Msg("metrics: alerts unavailable")
		return fam
	}
	type key struct{ category, severity string }
	counts := make(map[key]int)
	for _, g := range engine.GroupAlertsByCategory(alerts) {
		for _, a := range g.Alerts {
			// One series per severity however the upstream cased it.
			severity := strings.ToLower(strings.TrimSpace(string(a.Severity)))
			counts[key{g.Category, severity}]++
		}
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].severity < keys[j].severity
	})
	for _, k := range keys {
		fam.Metric = append(fam.Metric, gaugeMetric(float64(counts[k]), labels("category", k.category, "severity", k.severity)))
	}
	return fam
}

func (c *Collector) kpiFamily(ctx context.Context) *dto.MetricFamily {
	baseline := c.rules.Current().KPIBaseline
	kpis := baseline

	window := engine.DayWindow(c.now(), kpiWindow)
	samples, err := c.src.ListHospitalMetrics(ctx, store.MetricFilter{Since: window.Start})
	if err != nil {
		c.logger.Warn().Err(err).Msg("metrics: hospital metrics unavailable, reporting baseline")
	} else {
		kpis = engine.ComposeKPIs(samples, baseline)
	}

	fam := family("neocare_kpi", "Clinical KPIs over the last 30 days.", dto.MetricType_GAUGE)
	for _, kv := range []struct {
		name  string
		value float64
	}{
		{"avg_length_of_stay", kpis.AvgLengthOfStay},
		{"infection_rate", kpis.InfectionRate},
		{"lab_turnaround_time", kpis.LabTurnaroundTime},
		{"mortality_rate", kpis.MortalityRate},
		{"readmission_rate", kpis.ReadmissionRate},
		{"surgery_success_rate", kpis.SurgerySuccessRate},
	} {
		fam.Metric = append(fam.Metric, gaugeMetric(kv.value, labels("name", kv.name)))
	}
	return fam
}

func family(name, help string, typ dto.MetricType, metrics ...*dto.Metric) *dto.MetricFamily {
	return &dto.MetricFamily{Name: ptr(name), Help: ptr(help), Type: typ.Enum(), Metric: metrics}
}

func gaugeMetric(v float64, lbl []*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: lbl, Gauge: &dto.Gauge{Value: ptr(v)}}
}

func counterMetric(v float64) *dto.Metric {
	return &dto.Metric{Counter: &dto.Counter{Value: ptr(v)}}
}

func labels(kv ...string) []*dto.LabelPair {
	out := make([]*dto.LabelPair, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, &dto.LabelPair{Name: ptr(kv[i]), Value: ptr(kv[i+1])})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
