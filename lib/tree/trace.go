package tree

import "go.uber.org/zap"

// mutationTracer mirrors structural mutations to a debug logger. Like
// treeStats, every hook tolerates a nil receiver.
type mutationTracer struct {
	logger *zap.Logger
}

func (tracer *mutationTracer) onRotate(direction string, pivotWasRoot bool) {
	if tracer == nil || tracer.logger == nil {
		return
	}
	tracer.logger.Debug("rbtree rotate",
		zap.String("direction", direction),
		zap.Bool("pivotWasRoot", pivotWasRoot),
	)
}

func (tracer *mutationTracer) onDelete(removedColor RBColor) {
	if tracer == nil || tracer.logger == nil {
		return
	}
	tracer.logger.Debug("rbtree delete",
		zap.String("removedColor", removedColor.String()),
		zap.Bool("fixupRequired", removedColor == Black),
	)
}
