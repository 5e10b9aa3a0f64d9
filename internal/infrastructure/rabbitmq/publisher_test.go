package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"b2bmarket/internal/domain/entity"
)

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "deal.deal_confirmed", RoutingKey(entity.EventDealConfirmed))
	assert.Equal(t, "deal.room_expired", RoutingKey(entity.EventRoomExpired))
}
