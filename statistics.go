package extmem

import (
	"fmt"
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics is a point-in-time summary of the external memory a Context is tracking
type Statistics struct {
	ImportCount  int
	ImportBytes  int
	MappingCount int
	MappingBytes int
}

func (s *Statistics) Clear() {
	s.ImportCount = 0
	s.ImportBytes = 0
	s.MappingCount = 0
	s.MappingBytes = 0
}

// DetailedStatistics extends Statistics with the extremes of import and mapping sizes
type DetailedStatistics struct {
	Statistics
	ImportSizeMin  int
	ImportSizeMax  int
	MappingSizeMin int
	MappingSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.ImportSizeMin = math.MaxInt
	s.ImportSizeMax = 0
	s.MappingSizeMin = math.MaxInt
	s.MappingSizeMax = 0
}

func (s *DetailedStatistics) AddImport(size int) {
	s.ImportCount++
	s.ImportBytes += size

	if size < s.ImportSizeMin {
		s.ImportSizeMin = size
	}

	if size > s.ImportSizeMax {
		s.ImportSizeMax = size
	}
}

func (s *DetailedStatistics) AddMapping(size int) {
	s.MappingCount++
	s.MappingBytes += size

	if size < s.MappingSizeMin {
		s.MappingSizeMin = size
	}

	if size > s.MappingSizeMax {
		s.MappingSizeMax = size
	}
}

// GetStatistics returns the Context's running totals without walking its registry
func (c *Context) GetStatistics(stats *Statistics) {
	stats.ImportCount = int(c.importCount.Load())
	stats.ImportBytes = int(c.importBytes.Load())
	stats.MappingCount = int(c.mappingCount.Load())
	stats.MappingBytes = int(c.mappingBytes.Load())
}

// CalculateStatistics walks every live import on the Context. It is slower than GetStatistics.
func (c *Context) CalculateStatistics(stats *DetailedStatistics) {
	stats.Clear()

	c.registryMutex.RLock()
	defer c.registryMutex.RUnlock()

	c.registry.Iter(func(id uint64, mem *ExternalMemory) bool {
		stats.AddImport(mem.size)
		if mem.buffer != nil {
			stats.AddMapping(mem.buffer.len)
		}
		return false
	})
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *DetailedStatistics) {
	json.Name("ImportCount").Int(stats.ImportCount)
	json.Name("ImportBytes").Int(stats.ImportBytes)
	json.Name("MappingCount").Int(stats.MappingCount)
	json.Name("MappingBytes").Int(stats.MappingBytes)

	if stats.ImportCount > 0 {
		json.Name("ImportSizeMin").Int(stats.ImportSizeMin)
		json.Name("ImportSizeMax").Int(stats.ImportSizeMax)
	}

	if stats.MappingCount > 0 {
		json.Name("MappingSizeMin").Int(stats.MappingSizeMin)
		json.Name("MappingSizeMax").Int(stats.MappingSizeMax)
	}
}

func (m *ExternalMemory) printParameters(json *jwriter.ObjectState) {
	json.Name("HandleType").String(m.handleType.String())
	json.Name("Size").Int(m.size)

	if m.buffer != nil {
		mapping := json.Name("Mapping").Object()
		mapping.Name("Offset").Int(m.buffer.offset)
		mapping.Name("Size").Int(m.buffer.len)
		mapping.End()
	}

	if m.userData != nil {
		json.Name("CustomData").String(fmt.Sprintf("%+v", m.userData))
	}

	if m.name != "" {
		json.Name("Name").String(m.name)
	}
}

// BuildStatsString returns a JSON document describing the Context's external memory. If detailed
// is true, every live import is listed individually.
func (c *Context) BuildStatsString(detailed bool) string {
	var stats DetailedStatistics
	c.CalculateStatistics(&stats)

	writer := jwriter.NewWriter()
	obj := writer.Object()

	general := obj.Name("General").Object()
	general.Name("HandleType").String(c.defaultHandleType.String())
	general.Name("Flags").String(c.createFlags.String())
	general.Name("References").Int(int(c.refCount.Load()))
	general.End()

	total := obj.Name("Total").Object()
	printDetailedStatistics(&total, &stats)
	total.End()

	if detailed {
		c.registryMutex.RLock()

		imports := obj.Name("Imports").Array()
		c.registry.Iter(func(id uint64, mem *ExternalMemory) bool {
			item := imports.Object()
			item.Name("ID").Int(int(id))
			mem.printParameters(&item)
			item.End()
			return false
		})
		imports.End()

		c.registryMutex.RUnlock()
	}

	obj.End()

	return string(writer.Bytes())
}
