package moderation

import (
	"fmt"
)

// ConditionError is a precondition rejection. It is reported back to the
// invoking moderator and never recorded as a case.
type ConditionError struct {
	Action  string
	Message string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Message)
}

// CheckConditions validates that a moderation action is legal before any side
// effect occurs. Rules run in order, first match wins. Role hierarchy is not
// pre-validated here; Discord rejects the API call itself when the bot's role
// is not above the target's.
func CheckConditions(actorID, targetID, guildOwnerID, action string) error {
	if actorID == targetID {
		return &ConditionError{Action: action, Message: "you cannot moderate yourself"}
	}
	if targetID == guildOwnerID {
		return &ConditionError{Action: action, Message: "the guild owner cannot be moderated"}
	}
	return nil
}
