package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vkngwrapper/arsenal/extmem"
)

// StatisticsSource is anything that can report running external memory totals. *extmem.Context
// satisfies it.
type StatisticsSource interface {
	GetStatistics(stats *extmem.Statistics)
}

// Collector exports the running totals of a StatisticsSource as prometheus gauges. Values are read
// when the registry scrapes, so the collector never holds a stale snapshot.
type Collector struct {
	source StatisticsSource

	importCount  *prometheus.Desc
	importBytes  *prometheus.Desc
	mappingCount *prometheus.Desc
	mappingBytes *prometheus.Desc
}

var _ prometheus.Collector = &Collector{}

// NewCollector creates a Collector for source. constLabels are attached to every exported series,
// which allows more than one Context to be registered with the same registry.
func NewCollector(source StatisticsSource, namespace string, constLabels prometheus.Labels) *Collector {
	return &Collector{
		source: source,

		importCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "external_memory", "imports"),
			"Number of live external memory imports",
			nil, constLabels,
		),
		importBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "external_memory", "import_bytes"),
			"Bytes of live external memory imports",
			nil, constLabels,
		),
		mappingCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "external_memory", "mappings"),
			"Number of live mapped buffers",
			nil, constLabels,
		),
		mappingBytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "external_memory", "mapping_bytes"),
			"Bytes of live mapped buffers",
			nil, constLabels,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.importCount
	ch <- c.importBytes
	ch <- c.mappingCount
	ch <- c.mappingBytes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var stats extmem.Statistics
	c.source.GetStatistics(&stats)

	ch <- prometheus.MustNewConstMetric(c.importCount, prometheus.GaugeValue, float64(stats.ImportCount))
	ch <- prometheus.MustNewConstMetric(c.importBytes, prometheus.GaugeValue, float64(stats.ImportBytes))
	ch <- prometheus.MustNewConstMetric(c.mappingCount, prometheus.GaugeValue, float64(stats.MappingCount))
	ch <- prometheus.MustNewConstMetric(c.mappingBytes, prometheus.GaugeValue, float64(stats.MappingBytes))
}
