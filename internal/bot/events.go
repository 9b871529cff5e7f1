package bot

import (
	"context"
	"time"

	"github.com/devusSs/warden/internal/bot/platform"
	"github.com/devusSs/warden/internal/bot/types"
	"github.com/devusSs/warden/internal/database"
	"github.com/devusSs/warden/internal/logging"
	"github.com/devusSs/warden/internal/utils"
)

// Stores a cog event. Failures are logged, events never abort a flow.
func RecordEvent(ctx context.Context, svc database.Service, log *logging.Logger, guildID string, typ types.EventType, data interface{}) {
	innerData, err := utils.MarshalStruct(data)
	if err != nil {
		log.Errorf("marshal %s event: %v", typ, err)
		return
	}

	if _, err := svc.AddCogEvent(ctx, database.CogEvent{
		GuildID:   guildID,
		Type:      typ,
		Data:      innerData,
		Timestamp: time.Now(),
	}); err != nil {
		log.Errorf("store %s event: %v", typ, err)
	}
}

// Handles the error of an isolated side effect. Missing targets count as done,
// missing permissions are warned about, the rest is logged. Never propagates.
func BestEffort(log *logging.Logger, step string, err error) {
	err = platform.Classify(err)
	switch {
	case err == nil, platform.IsNotFound(err):
	case platform.IsForbidden(err):
		log.Warnf("%s: missing permissions: %v", step, err)
	default:
		log.Errorf("%s: %v", step, err)
	}
}
