package smoketest

import (
	"fmt"

	"github.com/okian/todos/internal/domain/model"
)

// verifyCreated checks a POST response against the body that was sent.
func verifyCreated(in model.Input, got model.Todo) error {
	switch {
	case got.ID <= 0:
		return fmt.Errorf("%w: created todo has id %d", ErrVerification, got.ID)
	case got.Title != in.Title:
		return fmt.Errorf("%w: created title %q, sent %q", ErrVerification, got.Title, in.Title)
	case got.Completed != in.Completed:
		return fmt.Errorf("%w: created completed=%t, sent %t", ErrVerification, got.Completed, in.Completed)
	}
	return nil
}

// verifyRoundTrip checks GET returns what POST returned.
func verifyRoundTrip(want, got model.Todo) error {
	if want != got {
		return fmt.Errorf("%w: GET returned %+v, created %+v", ErrVerification, got, want)
	}
	return nil
}

// verifyUpdated checks a PUT that set completed=true.
func verifyUpdated(before, got model.Todo) error {
	switch {
	case got.ID != before.ID:
		return fmt.Errorf("%w: update changed id %d to %d", ErrVerification, before.ID, got.ID)
	case got.Title != before.Title:
		return fmt.Errorf("%w: update changed title %q to %q", ErrVerification, before.Title, got.Title)
	case !got.Completed:
		return fmt.Errorf("%w: todo %d not completed after update", ErrVerification, got.ID)
	}
	return nil
}

// verifyListGrowth checks the list grew by at least len(created) and
// contains every created id. Other clients may add rows concurrently, so
// growth beyond that is accepted.
func verifyListGrowth(before int, after, created []model.Todo) error {
	if len(after) < before+len(created) {
		return fmt.Errorf("%w: list has %d todos, expected at least %d", ErrVerification, len(after), before+len(created))
	}
	seen := make(map[int64]struct{}, len(after))
	for _, t := range after {
		seen[t.ID] = struct{}{}
	}
	missing := 0
	for _, t := range created {
		if _, ok := seen[t.ID]; !ok {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d created todos missing from list", ErrVerification, missing)
	}
	return nil
}
