package program

import "testing"

func TestOutcomeString(t *testing.T) {
	cases := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeFailed, "failed"},
		{OutcomeReturned, "returned"},
		{OutcomeCompleted, "completed"},
		{Outcome(99), "unknown"},
	}

	for _, c := range cases {
		if got := c.outcome.String(); got != c.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", c.outcome, got, c.want)
		}
	}
}
