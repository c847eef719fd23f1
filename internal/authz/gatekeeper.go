package authz

import (
	"biomed-inventory/internal/entities"
)

// Gatekeeper - контейнер для проверок доступа к конкретным записям.
type Gatekeeper struct{}

func NewGatekeeper() *Gatekeeper {
	return &Gatekeeper{}
}

// CanSeeActa реализует проекцию видимости: инженер видит только акты,
// которые он оформил; материально-ответственное лицо - только адресованные
// ему; привилегированная роль (scope:all) видит всё.
func (g *Gatekeeper) CanSeeActa(perms map[string]bool, userID uint64, acta *entities.Acta) bool {
	if perms[Superuser] || perms[ScopeAll] {
		return true
	}
	if !perms[ActasView] {
		return false
	}
	return acta.DelivererID == userID || acta.ReceiverID == userID
}

// CanAcceptActa - принять акт может только назначенный в нём получатель.
// Scope:all здесь намеренно не даёт обходного пути: подпись получателя
// юридически принадлежит конкретному лицу.
func (g *Gatekeeper) CanAcceptActa(perms map[string]bool, userID uint64, acta *entities.Acta) bool {
	if !perms[ActasAccept] && !perms[Superuser] {
		return false
	}
	return acta.ReceiverID == userID
}
