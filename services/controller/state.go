package controller

import "github.com/meghashyamc/localsearch/services/search"

// State is one of Idle, Loading, Success or Failed. Every variant carries the results currently on
// display, so earlier results stay visible while a new search runs and after it fails.
type State interface {
	Phase() Phase
	Visible() []search.Result
}

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Idle struct{}

type Loading struct {
	Results []search.Result
}

type Success struct {
	Results []search.Result
}

type Failed struct {
	Message string
	Results []search.Result
}

func (Idle) Phase() Phase                  { return PhaseIdle }
func (Idle) Visible() []search.Result      { return nil }
func (Loading) Phase() Phase               { return PhaseLoading }
func (s Loading) Visible() []search.Result { return s.Results }
func (Success) Phase() Phase               { return PhaseSuccess }
func (s Success) Visible() []search.Result { return s.Results }
func (Failed) Phase() Phase                { return PhaseFailed }
func (s Failed) Visible() []search.Result  { return s.Results }

// Snapshot is a copy of the interaction state taken under the controller lock, safe to render.
type Snapshot struct {
	Query   string          `json:"query"`
	Phase   string          `json:"phase"`
	Loading bool            `json:"loading"`
	Error   string          `json:"error,omitempty"`
	Results []search.Result `json:"results"`
}

// ShowEmptyNotice reports whether the "no results" notice belongs on screen: nothing to show,
// nothing pending, nothing failed.
func (s Snapshot) ShowEmptyNotice() bool {
	return len(s.Results) == 0 && !s.Loading && len(s.Error) == 0
}

// IdleSnapshot is the state of a view that has not searched yet.
func IdleSnapshot() Snapshot {
	return snapshotOf("", Idle{})
}

func snapshotOf(query string, state State) Snapshot {
	visible := state.Visible()
	results := make([]search.Result, len(visible))
	copy(results, visible)

	snapshot := Snapshot{
		Query:   query,
		Phase:   state.Phase().String(),
		Loading: state.Phase() == PhaseLoading,
		Results: results,
	}
	if failed, ok := state.(Failed); ok {
		snapshot.Error = failed.Message
	}

	return snapshot
}
