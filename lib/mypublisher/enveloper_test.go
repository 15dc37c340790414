package mypublisher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/agencyportal/lib/mytime"
)

type loginHappened struct {
	OpenID string
}

func (e loginHappened) GetEventTypeName() string { return "login.happened" }
func (e loginHappened) GetAggregateName() string { return e.OpenID }

func TestEnveloper(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	sut := newEnveloper(nower)

	t.Run("Wrap", func(t *testing.T) {
		nower.EXPECT().Now().Return(mytime.ExampleTime)

		envlp, err := sut.wrap("social", loginHappened{OpenID: "u1"})
		assert.NoError(t, err)
		assert.Equal(t, "social", envlp.Topic)
		assert.Equal(t, "u1", envlp.AggregateUID)
		assert.Equal(t, "login.happened", envlp.EventTypeName)
		assert.Equal(t, `{"OpenID":"u1"}`, envlp.EventPayload)
		assert.Equal(t, mytime.ExampleTime, envlp.CreatedAt)
		assert.False(t, envlp.Published)
		assert.Len(t, envlp.UID, 43)
	})

	t.Run("Same event same uid, regardless of time", func(t *testing.T) {
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour))

		first, err := sut.wrap("social", loginHappened{OpenID: "u1"})
		assert.NoError(t, err)
		second, err := sut.wrap("social", loginHappened{OpenID: "u1"})
		assert.NoError(t, err)

		assert.Equal(t, first.UID, second.UID)
	})

	t.Run("Different event different uid", func(t *testing.T) {
		nower.EXPECT().Now().Return(mytime.ExampleTime).Times(2)

		first, _ := sut.wrap("social", loginHappened{OpenID: "u1"})
		second, _ := sut.wrap("social", loginHappened{OpenID: "u2"})

		assert.NotEqual(t, first.UID, second.UID)
	})
}
