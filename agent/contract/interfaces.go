package contract

import "context"

// ParLookup resolves the par of a hole. Implementations return an error when
// they have no answer; callers decide the fallback.
type ParLookup interface {
	Par(ctx context.Context, holeNumber int) (int, error)
}

type CourseKnowledge interface {
	ParLookup
	HoleInfo(ctx context.Context, holeNumber int) (HoleInfo, error)
}

type WeatherProvider interface {
	Current(ctx context.Context) (Conditions, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event RoundEvent) error
}
