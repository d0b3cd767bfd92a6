package schedule

import "context"

type contextKey string

const (
	actorKey  contextKey = "actor"
	actionKey contextKey = "action"
)

// WithActor records who is changing the schedule, used in update notifications.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Actor returns the actor stored in ctx or an empty string.
func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}

// WithAction replaces the verb phrase published for the next mutation, e.g. "closed".
func WithAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, actionKey, action)
}

func actionOr(ctx context.Context, fallback string) string {
	if action, ok := ctx.Value(actionKey).(string); ok && action != "" {
		return action
	}
	return fallback
}
