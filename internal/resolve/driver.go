package resolve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/funvibe/calltower/internal/metrics"
)

// walk drives cons across the tower. Every layer of a priority group is
// drained; the walk stops after the first group that leaves a usable tier,
// so later groups can never contribute a better one.
func (r *Resolver) walk(ctx context.Context, site *CallSite, t *tower, cons consumer) Result {
	col := newCollector()
	groups := 0
	for gi, g := range t.groups {
		groups++
		for li, l := range g.layers {
			for _, cand := range cons.consume(l, position{group: gi, layer: li}) {
				metrics.RecordCandidate(cand.Tier.String())
				col.add(cand)
			}
		}
		col.endGroup(gi)
		if col.done() {
			r.ctx.logger().Debug("tower walk stopped",
				slog.String("name", site.Name()),
				slog.String("region", g.region.String()),
				slog.Int("group", gi),
				slog.String("tier", col.bestTier.String()))
			break
		}
	}

	res := col.result(groups)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("tower.groups", len(t.groups)),
		attribute.Int("tower.layers", t.layerCount()),
		attribute.Int("tower.groups_visited", groups),
		attribute.Int("candidates.considered", res.Considered),
		attribute.String("tier.best", res.BestTier.String()),
	)
	return res
}
