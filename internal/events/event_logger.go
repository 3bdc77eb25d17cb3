package events

import (
	"context"
	"encoding/json"
	"log"
)

func logEvent(_ context.Context, name string, event PipelineEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[events] failed to marshal %s event: %v", name, err)
		return
	}

	switch event.Type {
	case EventError:
		log.Printf("ERROR %s %s", name, data)
	case EventWarn:
		log.Printf("WARN %s %s", name, data)
	default:
		log.Printf("INFO %s %s", name, data)
	}
}
