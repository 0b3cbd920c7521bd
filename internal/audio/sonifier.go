// Package audio turns the simulation's kinetic energy into a quiet pad
// tone: more motion opens the filter. Output-only; failure to open a
// stream disables sonification without affecting the simulation.
package audio

import (
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	sampleRate = 44100
	bufferSize = 1024
)

type Sonifier struct {
	stream *portaudio.Stream

	mu     sync.Mutex
	energy float64

	smooth float64
	phase  [3]float64
	filter [2]float64

	Active bool
}

func NewSonifier() *Sonifier {
	return &Sonifier{}
}

func (s *Sonifier) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, bufferSize, s.process)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}

	s.stream = stream
	s.Active = true
	return nil
}

func (s *Sonifier) Stop() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	portaudio.Terminate()
	s.Active = false
}

// SetEnergy feeds the latest total kinetic energy; called from the
// render loop once per frame.
func (s *Sonifier) SetEnergy(e float64) {
	s.mu.Lock()
	s.energy = e
	s.mu.Unlock()
}

// Triangle wave: smooth, no harsh buzz.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// One-pole low pass.
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}

func (s *Sonifier) process(out [][]float32) {
	s.mu.Lock()
	target := s.energy
	s.mu.Unlock()

	dt := 1.0 / sampleRate
	freqs := [3]float64{110.0, 164.81, 220.0} // A2, E3, A3

	for i := range out[0] {
		// Slow morph toward the latest energy reading.
		s.smooth += (target - s.smooth) * 0.0005

		sample := 0.0
		for v := range freqs {
			s.phase[v] += freqs[v] * dt
			sample += triangle(s.phase[v]) * 0.1
		}

		// Map energy to filter cutoff, clamped to a gentle range.
		cutoff := 200.0 + math.Min(s.smooth, 1.0)*1800.0

		var l, r float64
		l, s.filter[0] = lpf(sample, cutoff, dt, s.filter[0])
		r, s.filter[1] = lpf(sample, cutoff*1.01, dt, s.filter[1])

		out[0][i] = float32(l)
		out[1][i] = float32(r)
	}
}
