package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/rs/zerolog"
)

type nodeStartKey struct{}

// newLoggerCallback logs the start, end and failure of every node in the analysis graph.
func newLoggerCallback(logger zerolog.Logger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
			logger.Debug().Str("node", nodeName(info)).Msg("node started")
			return context.WithValue(ctx, nodeStartKey{}, time.Now())
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
			logger.Debug().Str("node", nodeName(info)).Dur("elapsed", elapsed(ctx)).Msg("node finished")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.Warn().Err(err).Str("node", nodeName(info)).Dur("elapsed", elapsed(ctx)).Msg("node failed")
			return ctx
		}).
		Build()
}

func nodeName(info *callbacks.RunInfo) string {
	if info == nil {
		return ""
	}
	return info.Name
}

func elapsed(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(nodeStartKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
