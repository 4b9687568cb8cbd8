package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var Emit = func(ctx context.Context, evt ChatEvent) {}

func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, evt ChatEvent) {
		runtime.EventsEmit(ctx, EventName(evt.Type), evt)
		logRuntimeEvent(ctx, evt)
	}
}

func SetCustomEmitter(f func(ctx context.Context, evt ChatEvent)) {
	if f == nil {
		Emit = func(context.Context, ChatEvent) {}
		return
	}
	Emit = f
}
