package layout

// Scheduler schedules fn to run exactly once at some later point (an
// animation frame, a timer, a test harness calling it synchronously) and
// returns a cancel function that prevents fn from running if it has not
// fired yet.
type Scheduler func(fn func()) (cancel func())

// Runner drives a Simulation tick by tick through a host scheduler.
// Everything is single-threaded and cooperative: each tick runs
// synchronously inside the scheduled callback, and control returns to the
// host between ticks. The host stops being asked for ticks once the
// simulation converges.
//
// A tick callback firing after Stop is a defect class this type guards
// against explicitly: Stop cancels the pending callback and flips a stop
// flag that any already-delivered callback checks before touching the
// simulation.
type Runner struct {
	sim      *Simulation
	schedule Scheduler
	onTick   func(*Simulation)

	cancel  func()
	stopped bool
	running bool
}

// NewRunner creates a runner for sim. onTick, if non-nil, is invoked
// after every tick so a rendering surface can read Positions; it must not
// block.
func NewRunner(sim *Simulation, schedule Scheduler, onTick func(*Simulation)) *Runner {
	return &Runner{sim: sim, schedule: schedule, onTick: onTick}
}

// Start schedules the first tick. Calling Start on a stopped or already
// running runner is a no-op; a new graph view gets a new Simulation and a
// new Runner.
func (r *Runner) Start() {
	if r.stopped || r.running {
		return
	}
	if r.sim.Converged() {
		return
	}
	r.running = true
	r.next()
}

// Stop immediately deregisters any pending tick. It never drains: after
// Stop returns, the simulation state will not be touched again.
func (r *Runner) Stop() {
	r.stopped = true
	r.running = false
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Running reports whether ticks are still being scheduled.
func (r *Runner) Running() bool { return r.running }

func (r *Runner) next() {
	r.cancel = r.schedule(r.step)
}

func (r *Runner) step() {
	if r.stopped {
		return
	}
	more := r.sim.Tick()
	if r.onTick != nil {
		r.onTick(r.sim)
	}
	if !more {
		r.running = false
		r.cancel = nil
		return
	}
	r.next()
}
