package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateUnloaded, "unloaded"},
		{StateStopped, "stopped"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_Predicates(t *testing.T) {
	if StateUnloaded.IsLoaded() {
		t.Error("unloaded should not be loaded")
	}
	if !StateStopped.IsLoaded() {
		t.Error("stopped should be loaded")
	}
	if StateStopped.IsActive() {
		t.Error("stopped should not be active")
	}
	if !StatePlaying.IsActive() || !StatePaused.IsActive() {
		t.Error("playing and paused should be active")
	}
}
