package ecs

import (
	"context"
	"reflect"
	"strings"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Scheduler owns the frame order the rest of the engine relies on:
// pre-flush systems, pre-flush event pump, command buffer flush, post-flush
// systems, post-flush event pump. Those are the only two legal drain points
// per frame.
type Scheduler struct {
	world     *World
	pre       []System
	post      []System
	preStats  []*systemStatsInternal
	postStats []*systemStatsInternal
}

// NewScheduler creates a scheduler driving w.
func NewScheduler(w *World) *Scheduler {
	return &Scheduler{world: w}
}

// Register adds a system to the given phase and initializes any View fields
// it declares.
func (s *Scheduler) Register(phase Phase, system System) {
	s.initializeViews(system)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	stats := &systemStatsInternal{
		name:        systemType.Name(),
		minDuration: time.Duration(1<<63 - 1),
	}

	switch phase {
	case PhasePreFlush:
		s.pre = append(s.pre, system)
		s.preStats = append(s.preStats, stats)
	default:
		s.post = append(s.post, system)
		s.postStats = append(s.postStats, stats)
	}
}

func (s *Scheduler) initializeViews(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}
	if systemValue.Kind() != reflect.Struct {
		return
	}
	systemType := systemValue.Type()

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		fieldType := systemType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}
		if !strings.HasPrefix(field.Type().Name(), "View[") {
			continue
		}

		initMethod := field.Addr().MethodByName("Init")
		if !initMethod.IsValid() {
			panic("Init method not found on View field: " + fieldType.Name)
		}
		initMethod.Call([]reflect.Value{
			reflect.ValueOf(s.world.Registry()),
		})
	}
}

// Once runs one frame with the given delta time.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.world)

	s.runPhase(s.pre, s.preStats, frame)
	s.world.Events().Pump(StagePreFlush, s.world)
	s.world.FlushCommandBuffer()
	s.runPhase(s.post, s.postStats, frame)
	s.world.Events().Pump(StagePostFlush, s.world)
}

func (s *Scheduler) runPhase(systems []System, stats []*systemStatsInternal, frame *UpdateFrame) {
	for i, system := range systems {
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		st := stats[i]
		st.executionCount++
		st.lastDuration = duration
		st.totalDuration += duration
		if duration < st.minDuration {
			st.minDuration = duration
		}
		if duration > st.maxDuration {
			st.maxDuration = duration
		}
	}
}

// Run executes frames at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution, pre-flush systems
// first.
func (s *Scheduler) GetStats() *SchedulerStats {
	internal := make([]*systemStatsInternal, 0, len(s.preStats)+len(s.postStats))
	internal = append(internal, s.preStats...)
	internal = append(internal, s.postStats...)

	stats := &SchedulerStats{
		SystemCount: len(internal),
		Systems:     make([]SystemStats, len(internal)),
	}

	var totalExecs int64
	for i, in := range internal {
		avgDuration := time.Duration(0)
		if in.executionCount > 0 {
			avgDuration = in.totalDuration / time.Duration(in.executionCount)
		}

		stats.Systems[i] = SystemStats{
			Name:           in.name,
			ExecutionCount: in.executionCount,
			MinDuration:    in.minDuration,
			MaxDuration:    in.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   in.lastDuration,
			TotalDuration:  in.totalDuration,
		}
		totalExecs += in.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
