package moderation

import (
	"errors"
	"testing"
)

func TestCheckConditions(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		target  string
		owner   string
		wantErr bool
	}{
		{
			name:    "self moderation rejected",
			actor:   "100",
			target:  "100",
			owner:   "999",
			wantErr: true,
		},
		{
			name:    "guild owner rejected",
			actor:   "100",
			target:  "999",
			owner:   "999",
			wantErr: true,
		},
		{
			name:    "ordinary target allowed",
			actor:   "100",
			target:  "200",
			owner:   "999",
			wantErr: false,
		},
		{
			name:    "owner acting on self still rejected as self moderation",
			actor:   "999",
			target:  "999",
			owner:   "999",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckConditions(tt.actor, tt.target, tt.owner, "ban")
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckConditions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var condErr *ConditionError
				if !errors.As(err, &condErr) {
					t.Errorf("CheckConditions() error type = %T, want *ConditionError", err)
				}
			}
		})
	}
}
