package utils

import (
	"context"

	"maintenance-system/pkg/contextkeys"
	apperrors "maintenance-system/pkg/errors"
)

func GetActorIDFromCtx(ctx context.Context) (uint64, error) {
	actorID, ok := ctx.Value(contextkeys.ActorIDKey).(uint64)
	if !ok || actorID == 0 {
		return 0, apperrors.ErrActorIDNotFoundInContext
	}
	return actorID, nil
}
