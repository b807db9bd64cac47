package reporting

import (
	"context"
	"maps"
	"time"
)

type reportingMetaContextKey struct{}

// ReportingMeta is attached to every error reported from a ctx carrying it
type ReportingMeta struct {
	tags   map[string]string
	extras map[string]string

	// One run of the binary. Every command of a shell session shares it
	sessionID string
	// The command being run and the id of this invocation of it
	command   string
	runID     string
	startedAt time.Time
}

// MetaFromContext returns a copy of the meta in ctx, safe to modify
func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, _ := ctx.Value(reportingMetaContextKey{}).(ReportingMeta)
	meta.tags = maps.Clone(meta.tags)
	if meta.tags == nil {
		meta.tags = make(map[string]string)
	}
	meta.extras = maps.Clone(meta.extras)
	if meta.extras == nil {
		meta.extras = make(map[string]string)
	}
	return meta
}

func withMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, reportingMetaContextKey{}, meta)
}

func SetSessionIDInContext(ctx context.Context, sessionID string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) {
		meta.sessionID = sessionID
	})
}

// AddCommandToContext marks reports as coming from one invocation of command
func AddCommandToContext(ctx context.Context, command string, runID string, startedAt time.Time) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) {
		meta.command = command
		meta.runID = runID
		meta.startedAt = startedAt
	})
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.extras, extras)
	})
}

func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return withMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.tags, tags)
	})
}
