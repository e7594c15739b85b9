package integrators

import "github.com/san-kum/nbodyval/internal/dynamo"

// forceCache keeps the derivative evaluated at the end of the previous step.
// For a dynamo.Positional system its accelerations are exactly those at the
// start of the next step, so a kick-drift-kick step needs one force
// evaluation instead of two.
type forceCache struct {
	pos []float64
	dx  dynamo.State
}

// derive returns dyn's derivative at x, reusing the cached accelerations when
// x has the cached positions. Only the acceleration half of the result is
// valid on a hit.
func (c *forceCache) derive(dyn dynamo.System, x dynamo.State, t float64) dynamo.State {
	if _, ok := dyn.(dynamo.Positional); ok && c.holds(x[:len(x)/2]) {
		return c.dx
	}
	return dyn.Derive(x, t)
}

func (c *forceCache) holds(pos []float64) bool {
	if c.dx == nil || len(pos) != len(c.pos) {
		return false
	}
	for i, p := range pos {
		if p != c.pos[i] {
			return false
		}
	}
	return true
}

func (c *forceCache) store(dyn dynamo.System, pos []float64, dx dynamo.State) {
	if _, ok := dyn.(dynamo.Positional); !ok {
		return
	}
	c.pos = append(c.pos[:0], pos...)
	c.dx = dx
}

// Verlet is velocity Verlet, the scheme the exact reference engine uses.
type Verlet struct {
	scratch dynamo.State
	cache   forceCache
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.scratch) != n {
		v.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	acc := v.cache.derive(dyn, x, t)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*acc[half+i]*dt2
	}

	// velocities in scratch are stale; only accelerations are read back
	copy(v.scratch[:half], result[:half])
	copy(v.scratch[half:], x[half:])
	accNew := dyn.Derive(v.scratch, t+dt)
	v.cache.store(dyn, result[:half], accNew)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (acc[half+i]+accNew[half+i])*halfDt
	}

	return result
}

// Leapfrog is kick-drift-kick leapfrog.
type Leapfrog struct {
	scratch dynamo.State
	cache   forceCache
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.scratch) != n {
		l.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	acc := l.cache.derive(dyn, x, t)
	halfDt := dt * 0.5

	// kick
	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + acc[half+i]*halfDt
	}
	// drift
	for i := 0; i < half; i++ {
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	accNew := dyn.Derive(l.scratch, t+dt)
	l.cache.store(dyn, result[:half], accNew)

	// kick
	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + accNew[half+i]*halfDt
	}

	return result
}
