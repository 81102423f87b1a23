// Package service connects solve events to the components that consume
// them.
package service

import (
	"log/slog"

	"integral-solver/api"
	"integral-solver/service/stors/historystor"

	"github.com/duke-git/lancet/v2/eventbus"
)

const TopicSolve = "solve"

type Bus struct {
	bus *eventbus.EventBus[api.SolveEvent]
}

func NewBus() *Bus {
	return &Bus{bus: eventbus.NewEventBus[api.SolveEvent]()}
}

func (b *Bus) Publish(ev api.SolveEvent) {
	b.bus.Publish(eventbus.Event[api.SolveEvent]{Topic: TopicSolve, Payload: ev})
}

// Subscribe registers an asynchronous handler for every solve event.
func (b *Bus) Subscribe(handler func(ev api.SolveEvent)) {
	b.bus.Subscribe(TopicSolve, handler, true, 0, nil)
}

// SubscribeMethod only delivers events whose response used method.
func (b *Bus) SubscribeMethod(method string, handler func(ev api.SolveEvent)) {
	b.bus.Subscribe(TopicSolve, handler, true, 0, func(ev api.SolveEvent) bool {
		return ev.Response != nil && ev.Response.Method == method
	})
}

// RecordHistory stores every solve event in repo.
func RecordHistory(b *Bus, repo *historystor.Repository) {
	b.Subscribe(func(ev api.SolveEvent) {
		if err := repo.Create(historystor.FromEvent(ev)); err != nil {
			slog.Error("failed to record solve", "id", ev.ID, "err", err)
		}
	})
}
