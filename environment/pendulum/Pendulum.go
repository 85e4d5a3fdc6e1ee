// Package pendulum implements a continuous-action pendulum swing-up
// environment.
//
// A pendulum is attached to a fixed base. An agent can swing the
// pendulum back and forth, but the torque is underpowered. In order to
// swing the pendulum straight up, it must first be rocked back and
// forth, using the momentum to gradually climb higher until the
// pendulum can point straight up.
//
// Observations consist of the angle of the pendulum from the positive
// y-axis and its angular velocity. The angle is normalized to stay
// within [-π, π] and the angular velocity is clipped to
// [-SpeedBound, SpeedBound]. Actions are 1-dimensional torques which
// are clipped to [-TorqueBound, TorqueBound]. On each step, the reward
// is the cosine of the pendulum angle, so that returns lie in
// [-EpisodeSteps, EpisodeSteps].
//
// The environment is registered with the environment package under the
// name Name.
package pendulum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/bcrunner/environment"
	"github.com/samuelfneumann/bcrunner/environment/score"
	ts "github.com/samuelfneumann/bcrunner/timestep"
	"github.com/samuelfneumann/bcrunner/utils/floatutils"
)

// Name is the registered name of the environment
const Name = "pendulum-swingup-v0"

// default physical constants
const (
	AngleBound  float64 = math.Pi // +/- Angle bounds
	SpeedBound  float64 = 8.0     // +/- Speed bounds
	TorqueBound float64 = 2.0     // +/- Torque bounds

	EpisodeSteps int = 200

	dt              float64 = 0.05
	Gravity         float64 = 9.8
	Mass            float64 = 1.0
	Length          float64 = 1.0
	ActionDims      int     = 1
	ObservationDims int     = 2
)

func init() {
	ref := score.Reference{
		Min: -float64(EpisodeSteps),
		Max: float64(EpisodeSteps),
	}
	if err := score.Register("pendulum-swingup", ref); err != nil {
		panic(err)
	}

	environment.Register(Name, func(string) (environment.Environment, error) {
		return New(0, EpisodeSteps, 1.0)
	})
}

// Pendulum implements the environment.Environment interface
type Pendulum struct {
	starter      *environment.UniformStarter
	ender        environment.Ender
	ref          score.Reference
	angleBounds  r1.Interval
	speedBounds  r1.Interval
	torqueBounds r1.Interval
	lastStep     ts.TimeStep
	discount     float64
}

// New creates and returns a new Pendulum environment. Starting states
// are sampled uniformly with angles in [-π, π] and angular velocities
// in [-1, 1]. Episodes are cut off after cutoff steps.
func New(seed uint64, cutoff int, discount float64) (*Pendulum, error) {
	if cutoff <= 0 {
		return nil, fmt.Errorf("new: cutoff must be positive, got %v",
			cutoff)
	}

	angleBounds := r1.Interval{Min: -AngleBound, Max: AngleBound}
	speedBounds := r1.Interval{Min: -SpeedBound, Max: SpeedBound}
	torqueBounds := r1.Interval{Min: -TorqueBound, Max: TorqueBound}

	start := []r1.Interval{angleBounds, {Min: -1.0, Max: 1.0}}

	ref, err := score.Lookup(Name)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	return &Pendulum{
		starter:      environment.NewUniformStarter(start, seed),
		ender:        environment.NewStepLimit(cutoff),
		ref:          ref,
		angleBounds:  angleBounds,
		speedBounds:  speedBounds,
		torqueBounds: torqueBounds,
		discount:     discount,
	}, nil
}

// Seed seeds the starting state distribution
func (p *Pendulum) Seed(seed uint64) {
	p.starter.Seed(seed)
}

// Reset resets the environment and returns a starting state drawn from
// the starting state distribution
func (p *Pendulum) Reset() (ts.TimeStep, error) {
	state := p.starter.Start()
	if err := validateState(state, p.angleBounds, p.speedBounds); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	p.lastStep = ts.New(ts.First, 0, p.discount, state, 0)
	return p.lastStep, nil
}

// Step takes one environmental step given the torque in action and
// returns the next timestep and whether or not the episode has ended.
func (p *Pendulum) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if p.lastStep.Observation == nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: environment must be " +
			"reset before stepping")
	}
	if p.lastStep.Last() {
		return ts.TimeStep{}, true, fmt.Errorf("step: episode has ended, " +
			"environment must be reset")
	}
	if action.Len() != ActionDims {
		return ts.TimeStep{}, true, fmt.Errorf("step: actions should be "+
			"%d-dimensional, got %d", ActionDims, action.Len())
	}
	torque := action.AtVec(0)
	if math.IsNaN(torque) {
		return ts.TimeStep{}, true, fmt.Errorf("step: action is NaN")
	}

	next := p.nextState(p.lastStep.Observation, torque)
	reward := math.Cos(next.AtVec(0))

	step := ts.New(ts.Mid, reward, p.discount, next, p.lastStep.Number+1)
	p.ender.End(&step)

	p.lastStep = step
	return step, step.Last(), nil
}

// nextState computes the next state of the environment given the
// current state and an amount of torque to apply to the fixed base of
// the pendulum. The torque is first clipped to the torque bounds.
func (p *Pendulum) nextState(obs *mat.VecDense,
	torque float64) *mat.VecDense {
	th, thdot := obs.AtVec(0), obs.AtVec(1)

	torque = floatutils.ClipInterval(torque, p.torqueBounds)

	newthdot := thdot + (-3*Gravity/(2*Length)*math.Sin(th+math.Pi)+
		3.0/(Mass*math.Pow(Length, 2))*torque)*dt

	newth := th + (newthdot * dt)

	newthdot = floatutils.ClipInterval(newthdot, p.speedBounds)

	newth = normalizeAngle(newth)

	return mat.NewVecDense(ObservationDims, []float64{newth, newthdot})
}

// NormalizedScore returns the normalized score of a raw episodic
// return
func (p *Pendulum) NormalizedScore(raw float64) (float64, error) {
	return p.ref.Normalize(raw), nil
}

// ObservationSpec returns the observation specification of the
// environment
func (p *Pendulum) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	lowerBound := mat.NewVecDense(ObservationDims,
		[]float64{p.angleBounds.Min, p.speedBounds.Min})
	upperBound := mat.NewVecDense(ObservationDims,
		[]float64{p.angleBounds.Max, p.speedBounds.Max})

	return environment.NewSpec(shape, environment.Observation, lowerBound,
		upperBound, environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (p *Pendulum) ActionSpec() environment.Spec {
	shape := mat.NewVecDense(ActionDims, nil)

	lowerBound := mat.NewVecDense(ActionDims, []float64{p.torqueBounds.Min})
	upperBound := mat.NewVecDense(ActionDims, []float64{p.torqueBounds.Max})

	return environment.NewSpec(shape, environment.Action, lowerBound,
		upperBound, environment.Continuous)
}

// Close implements the environment.Environment interface
func (p *Pendulum) Close() error { return nil }

// String converts the environment to a string representation
func (p *Pendulum) String() string {
	if p.lastStep.Observation == nil {
		return "Pendulum  |  not reset"
	}
	return fmt.Sprintf("Pendulum  |  theta: %v  |  theta dot: %v",
		p.lastStep.Observation.AtVec(0), p.lastStep.Observation.AtVec(1))
}

// normalizeAngle wraps an angle into [-π, π]
func normalizeAngle(th float64) float64 {
	th = math.Mod(th+math.Pi, 2*math.Pi)
	if th < 0 {
		th += 2 * math.Pi
	}
	return th - math.Pi
}

// validateState validates the state to ensure that the angle and
// angular velocity are within the environmental limits
func validateState(obs *mat.VecDense, angleBounds,
	speedBounds r1.Interval) error {
	if th := obs.AtVec(0); th > angleBounds.Max || th < angleBounds.Min {
		return fmt.Errorf("theta %v is not within bounds %v", th, angleBounds)
	}
	if thdot := obs.AtVec(1); thdot > speedBounds.Max ||
		thdot < speedBounds.Min {
		return fmt.Errorf("theta dot %v is not within bounds %v", thdot,
			speedBounds)
	}
	return nil
}
