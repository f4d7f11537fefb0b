package timber

// Event is a discrete notification from the machine to its observers.
// Observers are called synchronously on the machine's goroutine.
type Event interface {
	timberEvent()
}

// Observer receives machine events.
type Observer func(Event)

// ScreenChanged is emitted on every screen transition.
type ScreenChanged struct {
	Screen Screen
}

func (ScreenChanged) timberEvent() {}

// ScoreChanged is emitted when the survival score changes or resets.
type ScoreChanged struct {
	Score int
}

func (ScoreChanged) timberEvent() {}

// TimerChanged is emitted whenever the survival timer moves.
type TimerChanged struct {
	Value float64
}

func (TimerChanged) timberEvent() {}

// ProgressChanged is emitted when time-trial progress changes or resets.
type ProgressChanged struct {
	Blocks   int
	Target   int
	Progress float64
}

func (ProgressChanged) timberEvent() {}

// TimeChanged is emitted every time-trial frame.
type TimeChanged struct {
	ElapsedMs float64
}

func (TimeChanged) timberEvent() {}

// Chopped is emitted after every successful chop. The renderer uses it
// to kick the screen shake.
type Chopped struct {
	Side Side
}

func (Chopped) timberEvent() {}

// GameOver is emitted once per game, when the game-over screen appears.
// Metric is the score in survival and the elapsed milliseconds in
// time-trial.
type GameOver struct {
	Mode    Mode
	Metric  float64
	NewBest bool
	Reason  DeathReason
	Won     bool
}

func (GameOver) timberEvent() {}
