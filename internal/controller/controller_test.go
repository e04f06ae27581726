package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/command"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/telemetry"
)

// fakeMoisture replays a fixed sequence of raw values, repeating the last one
type fakeMoisture struct {
	values []int
	idx    int
	err    error
}

func (f *fakeMoisture) Read() (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[f.idx]
	if f.idx < len(f.values)-1 {
		f.idx++
	}
	return v, nil
}

func (f *fakeMoisture) Close() error { return nil }

type fakeClimate struct {
	temperature float64
	humidity    float64
	err         error
}

func (f *fakeClimate) Read() (float64, float64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.temperature, f.humidity, nil
}

func (f *fakeClimate) Close() error { return nil }

type fakeActuator struct {
	moves []models.CoverState
	err   error
}

func (f *fakeActuator) MoveTo(position models.CoverState) error {
	if f.err != nil {
		return f.err
	}
	f.moves = append(f.moves, position)
	return nil
}

func (f *fakeActuator) Close() error { return nil }

type fakeSink struct {
	err     error
	records []models.TelemetryRecord
	sentAt  []time.Time
	clock   *time.Time
}

func (f *fakeSink) Send(record models.TelemetryRecord) error {
	f.records = append(f.records, record)
	if f.clock != nil {
		f.sentAt = append(f.sentAt, *f.clock)
	}
	return f.err
}

type fakePresenter struct {
	shows int
	last  string
}

func (f *fakePresenter) Show(headline, detail string, raining bool, moisture int, temperatureC, humidityPct float64) {
	f.shows++
	f.last = headline
}

type fakeCommands struct {
	queue []command.Command
}

func (f *fakeCommands) Poll() (command.Command, bool) {
	if len(f.queue) == 0 {
		return command.Command{}, false
	}
	cmd := f.queue[0]
	f.queue = f.queue[1:]
	return cmd, true
}

type fakeSettings struct {
	id  string
	err error
}

func (f *fakeSettings) SetScriptID(id string) error {
	if f.err != nil {
		return f.err
	}
	f.id = id
	return nil
}

func testConfig() Config {
	return Config{
		RainThreshold: 2000,
		CycleInterval: 5 * time.Second,
		SendInterval:  30 * time.Second,
		RetryTimeout:  15 * time.Second,
	}
}

type harness struct {
	ctrl      *Controller
	moisture  *fakeMoisture
	actuator  *fakeActuator
	sink      *fakeSink
	presenter *fakePresenter
	now       time.Time
}

func newHarness(t *testing.T, moisture *fakeMoisture, sink *fakeSink) *harness {
	t.Helper()
	h := &harness{
		moisture:  moisture,
		actuator:  &fakeActuator{},
		sink:      sink,
		presenter: &fakePresenter{},
		now:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	sink.clock = &h.now
	h.ctrl = New(testConfig(), Collaborators{
		Moisture:  h.moisture,
		Climate:   &fakeClimate{temperature: 22.5, humidity: 45.0},
		Cover:     h.actuator,
		Sink:      h.sink,
		Presenter: h.presenter,
	}, zerolog.Nop())
	return h
}

// step advances the clock and runs one cycle
func (h *harness) step(d time.Duration) {
	h.now = h.now.Add(d)
	h.ctrl.Cycle(h.now)
}

func TestController_CoverSequence(t *testing.T) {
	// Moisture below the threshold means rain; the cover must follow the
	// sequence with exactly one actuation per transition.
	moisture := &fakeMoisture{values: []int{2500, 1800, 1800, 2500}}
	h := newHarness(t, moisture, &fakeSink{})

	wantStates := []models.CoverState{
		models.CoverOutside,
		models.CoverCovered,
		models.CoverCovered,
		models.CoverOutside,
	}

	for i, want := range wantStates {
		h.step(5 * time.Second)
		if got := h.ctrl.State(); got != want {
			t.Errorf("cycle %d: state = %v, want %v", i, got, want)
		}
	}

	if len(h.actuator.moves) != 2 {
		t.Fatalf("actuator invoked %d times, want 2", len(h.actuator.moves))
	}
	if h.actuator.moves[0] != models.CoverCovered || h.actuator.moves[1] != models.CoverOutside {
		t.Errorf("actuation sequence = %v, want [covered outside]", h.actuator.moves)
	}
}

func TestController_IdempotentAtSameReading(t *testing.T) {
	moisture := &fakeMoisture{values: []int{1500}}
	h := newHarness(t, moisture, &fakeSink{})

	for i := 0; i < 5; i++ {
		h.step(5 * time.Second)
	}

	if h.ctrl.State() != models.CoverCovered {
		t.Errorf("state = %v, want covered", h.ctrl.State())
	}
	if len(h.actuator.moves) != 1 {
		t.Errorf("actuator invoked %d times for a steady reading, want 1", len(h.actuator.moves))
	}
}

func TestController_BootAlwaysSends(t *testing.T) {
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})

	h.step(0)

	if len(h.sink.records) != 1 {
		t.Fatalf("boot cycle sent %d records, want 1", len(h.sink.records))
	}
}

func TestController_TransitionForcesSend(t *testing.T) {
	moisture := &fakeMoisture{values: []int{2500, 2500, 1800}}
	h := newHarness(t, moisture, &fakeSink{})

	h.step(0)               // boot send
	h.step(5 * time.Second) // dry, no send
	if len(h.sink.records) != 1 {
		t.Fatalf("unexpected send before transition: %d records", len(h.sink.records))
	}

	h.step(5 * time.Second) // rain starts, transition forces a send
	if len(h.sink.records) != 2 {
		t.Fatalf("transition cycle sent %d records total, want 2", len(h.sink.records))
	}

	sent := h.sink.records[1]
	if !sent.Raining || sent.Cover != models.CoverCovered {
		t.Errorf("forced record = %+v, want raining covered", sent)
	}
}

func TestController_NoSendBeforeInterval(t *testing.T) {
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})

	h.step(0) // boot send at t0, succeeds
	h.step(5 * time.Second)
	h.step(5 * time.Second)
	h.step(5 * time.Second) // t0+15: retry needs strictly more than retryTimeout

	if len(h.sink.records) != 1 {
		t.Fatalf("sent %d records before sendInterval, want 1", len(h.sink.records))
	}

	h.step(15 * time.Second) // t0+30: interval elapsed
	if len(h.sink.records) != 2 {
		t.Fatalf("sent %d records after sendInterval, want 2", len(h.sink.records))
	}
}

func TestController_SuccessAdvancesLastSuccess(t *testing.T) {
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})

	h.step(0)
	if !h.ctrl.schedule.LastSuccessAt.Equal(h.now) {
		t.Errorf("LastSuccessAt = %v, want %v", h.ctrl.schedule.LastSuccessAt, h.now)
	}
}

func TestController_FailureLeavesLastSuccess(t *testing.T) {
	sink := &fakeSink{err: errors.New("connection refused")}
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, sink)

	h.step(0)
	boot := h.now
	h.step(30 * time.Second)

	if len(sink.records) < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", len(sink.records))
	}
	// Boot anchored LastSuccessAt; failures must never advance it
	if !h.ctrl.schedule.LastSuccessAt.Equal(boot) {
		t.Errorf("LastSuccessAt = %v, want boot time %v", h.ctrl.schedule.LastSuccessAt, boot)
	}
}

func TestController_RetryAfterTimeout(t *testing.T) {
	// Failing sink: the retry branch must fire once retryTimeout has elapsed
	// past both LastSendAt and LastSuccessAt, independent of sendInterval.
	sink := &fakeSink{err: errors.New("endpoint down")}
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, sink)

	h.step(0) // boot attempt at t0, fails
	boot := h.now

	for i := 0; i < 8; i++ { // through t0+40 at the 5s cadence
		h.step(5 * time.Second)
	}

	wantAt := []time.Time{
		boot,
		boot.Add(20 * time.Second), // first cycle with both gaps > 15s
		boot.Add(40 * time.Second),
	}
	if len(sink.sentAt) != len(wantAt) {
		t.Fatalf("attempts at %v, want %v", sink.sentAt, wantAt)
	}
	for i := range wantAt {
		if !sink.sentAt[i].Equal(wantAt[i]) {
			t.Errorf("attempt %d at %v, want %v", i, sink.sentAt[i], wantAt[i])
		}
	}
	if !h.ctrl.schedule.LastSuccessAt.Equal(boot) {
		t.Errorf("LastSuccessAt advanced to %v despite failures", h.ctrl.schedule.LastSuccessAt)
	}
}

func TestController_MissingEndpointKeepsNormalCadence(t *testing.T) {
	// An unset endpoint identifier is not a delivery failure: the send is
	// skipped and must not be retried faster than the regular interval.
	sink := &fakeSink{err: telemetry.ErrNoEndpoint}
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, sink)

	h.step(0) // boot
	boot := h.now
	for i := 0; i < 12; i++ { // through t0+60
		h.step(5 * time.Second)
	}

	wantAt := []time.Time{boot, boot.Add(30 * time.Second), boot.Add(60 * time.Second)}
	if len(sink.sentAt) != len(wantAt) {
		t.Fatalf("attempts at %v, want interval cadence %v", sink.sentAt, wantAt)
	}
	for i := range wantAt {
		if !sink.sentAt[i].Equal(wantAt[i]) {
			t.Errorf("attempt %d at %v, want %v", i, sink.sentAt[i], wantAt[i])
		}
	}
}

func TestController_ClimateFailureKeepsCache(t *testing.T) {
	climate := &fakeClimate{temperature: 22.5, humidity: 45.0}
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})
	h.ctrl.co.Climate = climate

	h.step(0)
	if r := h.ctrl.Reading(); !r.Valid {
		t.Fatal("reading should be valid after successful sample")
	}

	climate.err = errors.New("no reading")
	h.step(5 * time.Second)

	r := h.ctrl.Reading()
	if r.TemperatureC != 22.5 || r.HumidityPct != 45.0 {
		t.Errorf("cached climate changed: temp=%v humidity=%v", r.TemperatureC, r.HumidityPct)
	}
	if r.Valid {
		t.Error("reading should be invalid while the climate sensor fails")
	}
}

func TestController_MoistureFailureKeepsValue(t *testing.T) {
	moisture := &fakeMoisture{values: []int{2500}}
	h := newHarness(t, moisture, &fakeSink{})

	h.step(0)
	moisture.err = errors.New("adc gone")
	h.step(5 * time.Second)

	if r := h.ctrl.Reading(); r.MoistureRaw != 2500 {
		t.Errorf("MoistureRaw = %d, want cached 2500", r.MoistureRaw)
	}
	// A dry cached value must not flip the cover
	if h.ctrl.State() != models.CoverOutside {
		t.Errorf("state = %v, want outside", h.ctrl.State())
	}
}

func TestController_ActuationFailureRetriesNextCycle(t *testing.T) {
	moisture := &fakeMoisture{values: []int{1500}}
	h := newHarness(t, moisture, &fakeSink{})
	h.actuator.err = errors.New("motor stalled")

	h.step(0)
	if h.ctrl.State() != models.CoverOutside {
		t.Errorf("state advanced despite failed actuation: %v", h.ctrl.State())
	}

	h.actuator.err = nil
	h.step(5 * time.Second)
	if h.ctrl.State() != models.CoverCovered {
		t.Errorf("state = %v after recovery, want covered", h.ctrl.State())
	}
	if len(h.actuator.moves) != 1 {
		t.Errorf("completed actuations = %d, want 1", len(h.actuator.moves))
	}
}

func TestController_PresenterRefreshedEveryCycle(t *testing.T) {
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})

	for i := 0; i < 4; i++ {
		h.step(5 * time.Second)
	}

	if h.presenter.shows != 4 {
		t.Errorf("presenter refreshed %d times over 4 cycles, want 4", h.presenter.shows)
	}
	if h.presenter.last != "All clear" {
		t.Errorf("headline = %q, want All clear", h.presenter.last)
	}
}

func TestController_SetScriptIDCommand(t *testing.T) {
	h := newHarness(t, &fakeMoisture{values: []int{2500}}, &fakeSink{})
	settings := &fakeSettings{}
	h.ctrl.co.Commands = &fakeCommands{queue: []command.Command{
		{Name: command.CmdSetScriptID, Value: "abc123"},
	}}
	h.ctrl.co.Settings = settings

	h.step(0)

	if settings.id != "abc123" {
		t.Errorf("script ID = %q, want abc123", settings.id)
	}
}
