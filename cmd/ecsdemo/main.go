// Command ecsdemo wires one Engine and two EntityProcessingSystems
// together to exercise the whole ecs stack end-to-end — each system
// builds and attaches its own Aspect when added to the Engine. It is an
// illustration, not a game: it owns no render loop and ships no assets.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightforge/ecs"
	"github.com/brightforge/ecs/internal/telemetry"
)

// Position and Velocity are this demo's own components — the ecs package
// never defines concrete domain components itself.
type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }

type movementSystem struct {
	*ecs.BaseEntityProcessingSystem
}

func newMovementSystem() *movementSystem {
	return &movementSystem{ecs.NewBaseEntityProcessingSystem(0,
		ecs.WithAll(ecs.TypeOf[*Position](), ecs.TypeOf[*Velocity]()),
	)}
}

func (m *movementSystem) ProcessEntity(entity *ecs.Entity, index int, entities []*ecs.Entity, options any) error {
	posVal, ok := entity.Get(ecs.TypeOf[*Position]())
	if !ok {
		return nil
	}
	velVal, ok := entity.Get(ecs.TypeOf[*Velocity]())
	if !ok {
		return nil
	}
	pos := posVal.(*Position)
	vel := velVal.(*Velocity)
	pos.X += vel.DX
	pos.Y += vel.DY
	return nil
}

func (m *movementSystem) Process(options any) error {
	return ecs.RunProcessEntities(m, options)
}

func (m *movementSystem) Run(options any, mode ecs.SystemMode) error {
	return ecs.RunSystem(m, options, mode)
}

func newReportSystem() *ecs.FuncProcessingSystem {
	return ecs.NewFuncProcessingSystem(10, func(entity *ecs.Entity, index int, entities []*ecs.Entity, options any) error {
		posVal, ok := entity.Get(ecs.TypeOf[*Position]())
		if !ok {
			return nil
		}
		pos := posVal.(*Position)
		fmt.Printf("entity %v at (%.2f, %.2f)\n", entity.ID, pos.X, pos.Y)
		return nil
	}, ecs.WithAll(ecs.TypeOf[*Position](), ecs.TypeOf[*Velocity]()))
}

func main() {
	logger := telemetry.NewLogger(os.Stdout, zerolog.InfoLevel)
	metrics := telemetry.NewMetrics()

	engine := ecs.NewEngine(
		ecs.WithName("ecsdemo"),
		ecs.WithLogger(logger),
		ecs.WithMetrics(metrics),
	)

	engine.AddSystem(newMovementSystem())
	engine.AddSystem(newReportSystem())

	for i := 0; i < 3; i++ {
		id := uuid.NewString()
		entity := ecs.NewEntity(id, &Position{X: float64(i)}, &Velocity{DX: 1, DY: 0.5})
		engine.Entities.Add(entity)
	}

	for tick := 0; tick < 3; tick++ {
		if err := engine.Run(nil, ecs.SUCCESSIVE); err != nil {
			logger.Error("tick failed", err, map[string]any{"tick": tick})
		}
		time.Sleep(10 * time.Millisecond)
	}
}
