package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/funvibe/calltower/internal/config"
)

// Snapshot is a point-in-time copy of the resolution counters.
type Snapshot struct {
	// Outcomes maps "kind/outcome" to its count.
	Outcomes map[string]float64
	// Candidates maps a tier name to its count.
	Candidates map[string]float64
	// Resolutions is the number of observations of the groups histogram.
	Resolutions uint64
	// GroupsSum is the total number of groups visited.
	GroupsSum float64
}

// Take gathers the calltower metric families from g.
func Take(g prometheus.Gatherer) (*Snapshot, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	s := &Snapshot{
		Outcomes:   make(map[string]float64),
		Candidates: make(map[string]float64),
	}
	prefix := config.MetricsNamespace + "_resolve_"
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		switch strings.TrimPrefix(name, prefix) {
		case "outcomes_total":
			for _, m := range mf.GetMetric() {
				key := label(m, "kind") + "/" + label(m, "outcome")
				s.Outcomes[key] += m.GetCounter().GetValue()
			}
		case "candidates_total":
			for _, m := range mf.GetMetric() {
				s.Candidates[label(m, "tier")] += m.GetCounter().GetValue()
			}
		case "groups_visited":
			for _, m := range mf.GetMetric() {
				s.Resolutions += m.GetHistogram().GetSampleCount()
				s.GroupsSum += m.GetHistogram().GetSampleSum()
			}
		}
	}
	return s, nil
}

// Sub returns the difference s - base, for reporting a single run.
func (s *Snapshot) Sub(base *Snapshot) *Snapshot {
	out := &Snapshot{
		Outcomes:    make(map[string]float64),
		Candidates:  make(map[string]float64),
		Resolutions: s.Resolutions - base.Resolutions,
		GroupsSum:   s.GroupsSum - base.GroupsSum,
	}
	for k, v := range s.Outcomes {
		if d := v - base.Outcomes[k]; d != 0 {
			out.Outcomes[k] = d
		}
	}
	for k, v := range s.Candidates {
		if d := v - base.Candidates[k]; d != 0 {
			out.Candidates[k] = d
		}
	}
	return out
}

// String renders the snapshot as sorted "key=value" lines.
func (s *Snapshot) String() string {
	var lines []string
	for k, v := range s.Outcomes {
		lines = append(lines, fmt.Sprintf("outcome %s=%g", k, v))
	}
	for k, v := range s.Candidates {
		lines = append(lines, fmt.Sprintf("candidates %s=%g", k, v))
	}
	sort.Strings(lines)
	if s.Resolutions > 0 {
		lines = append(lines, fmt.Sprintf("groups avg=%.2f", s.GroupsSum/float64(s.Resolutions)))
	}
	return strings.Join(lines, "\n")
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
