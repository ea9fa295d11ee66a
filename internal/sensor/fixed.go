package sensor

import "context"

// Fixed always returns the same reading, or Err when set. Used by the CLI
// and in tests.
type Fixed struct {
	Reading Reading
	Err     error
}

func (s Fixed) CurrentPosition(ctx context.Context, _ Options) (Reading, error) {
	if ctx.Err() != nil {
		return Reading{}, timeoutFailure(ctx)
	}
	if s.Err != nil {
		return Reading{}, s.Err
	}
	if err := checkRange(s.Reading); err != nil {
		return Reading{}, err
	}
	return s.Reading, nil
}
