package authz

import (
	"testing"

	"biomed-inventory/internal/entities"

	"github.com/stretchr/testify/assert"
)

func testActa() *entities.Acta {
	return &entities.Acta{
		ID:          "acta-1",
		DelivererID: 1,
		ReceiverID:  2,
		Status:      entities.ActaStatusSent,
	}
}

func TestCanSeeActa(t *testing.T) {
	g := NewGatekeeper()
	acta := testActa()

	viewOnly := map[string]bool{ActasView: true}

	assert.True(t, g.CanSeeActa(viewOnly, 1, acta), "передающий видит свой акт")
	assert.True(t, g.CanSeeActa(viewOnly, 2, acta), "получатель видит адресованный ему акт")
	assert.False(t, g.CanSeeActa(viewOnly, 3, acta), "посторонний не видит чужой акт")

	assert.True(t, g.CanSeeActa(map[string]bool{ScopeAll: true}, 3, acta))
	assert.True(t, g.CanSeeActa(map[string]bool{Superuser: true}, 3, acta))

	assert.False(t, g.CanSeeActa(map[string]bool{}, 1, acta), "без права просмотра не виден даже свой акт")
}

func TestCanAcceptActa_ReceiverOnly(t *testing.T) {
	g := NewGatekeeper()
	acta := testActa()

	accept := map[string]bool{ActasAccept: true}

	assert.True(t, g.CanAcceptActa(accept, 2, acta))
	assert.False(t, g.CanAcceptActa(accept, 1, acta), "передающий не может принять свой акт")
	assert.False(t, g.CanAcceptActa(accept, 3, acta))

	// scope:all не даёт права подписывать за получателя.
	assert.False(t, g.CanAcceptActa(map[string]bool{ActasAccept: true, ScopeAll: true}, 3, acta))

	// superuser тоже ограничен получателем.
	assert.False(t, g.CanAcceptActa(map[string]bool{Superuser: true}, 3, acta))
	assert.True(t, g.CanAcceptActa(map[string]bool{Superuser: true}, 2, acta))
}
