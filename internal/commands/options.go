package commands

import (
	"gtaskroll/internal/config"
	"gtaskroll/internal/rollover"
)

// rolloverOptions maps settings onto the orchestrator's options.
func rolloverOptions(s *config.Settings) (rollover.Options, error) {
	loc, err := s.Location()
	if err != nil {
		return rollover.Options{}, err
	}
	day, err := s.DigestDay()
	if err != nil {
		return rollover.Options{}, err
	}
	return rollover.Options{
		InboxName:        s.InboxName(),
		DailyPrefix:      s.DailyPrefix(),
		DateFormat:       s.DateFormat(),
		Location:         loc,
		ExecutionTimeout: s.ExecutionTimeout(),
		LockWait:         s.LockWait(),
		AutoMoveDueTasks: s.AutoMoveDueTasks(),
		TrackRollovers:   s.TrackRollovers(),
		DigestEnabled:    s.DigestEnabled(),
		DigestDay:        day,
		NotifyEmail:      s.NotifyEmail(),
	}, nil
}
