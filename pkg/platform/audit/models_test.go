package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "credvault/pkg/domain"
)

func TestEventAggregate(t *testing.T) {
	actor := id.NewSubjectID()

	tests := []struct {
		name     string
		event    Event
		wantType string
		wantID   string
	}{
		{"subject only", Event{ActorID: actor}, "subject", actor.String()},
		{"certificate", Event{ActorID: actor, CertificateID: "c-1"}, "certificate", "c-1"},
		{"access request wins", Event{ActorID: actor, CertificateID: "c-1", AccessRequestID: "r-1"}, "access_request", "r-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.event.AggregateType())
			assert.Equal(t, tt.wantID, tt.event.AggregateID())
		})
	}
}
