package tree

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xtree/rbt"

	rotationLeft  = "left"
	rotationRight = "right"
)

// treeStats is optional per-tree instrumentation. All record methods
// are nil-receiver safe so the hot paths stay branch-cheap when stats
// are disabled.
type treeStats struct {
	insertedCount metric.Int64Counter
	removedCount  metric.Int64Counter
	searchedCount metric.Int64Counter
	rotationCount metric.Int64Counter
}

func newTreeStats(name string) *treeStats {
	if len(strings.TrimSpace(name)) == 0 {
		name = RBTreeStatsName
	}
	meter := otel.Meter(name)
	return &treeStats{
		insertedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbt.insert.count",
			metric.WithDescription(`The number of nodes inserted into the rbtree.`),
		)),
		removedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbt.remove.count",
			metric.WithDescription(`The number of nodes removed from the rbtree.`),
		)),
		searchedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbt.search.count",
			metric.WithDescription(`The number of rbtree point lookups.`),
		)),
		rotationCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xrbt.rotation.count",
			metric.WithDescription(`The number of rebalance rotations, by direction.`),
		)),
	}
}

func (stats *treeStats) RecordInsert() {
	if stats == nil {
		return
	}
	stats.insertedCount.Add(context.Background(), 1)
}

func (stats *treeStats) RecordRemove() {
	if stats == nil {
		return
	}
	stats.removedCount.Add(context.Background(), 1)
}

func (stats *treeStats) RecordSearch() {
	if stats == nil {
		return
	}
	stats.searchedCount.Add(context.Background(), 1)
}

func (stats *treeStats) RecordRotation(direction string) {
	if stats == nil {
		return
	}
	as := attribute.NewSet(
		attribute.String("xrbt.rotation.direction", direction),
	)
	stats.rotationCount.Add(context.Background(), 1, metric.WithAttributeSet(as))
}
