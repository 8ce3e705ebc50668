// Пакет status — классификация статуса клиента по давности активности.
// Правила проверяются в фиксированном порядке, первое совпадение побеждает:
//  1. online — с последней активности прошло меньше суток;
//  2. offline — меньше 7 суток;
//  3. feedback-pending — есть проект в статусе awaiting-feedback;
//  4. inactive — во всех остальных случаях.
//
// Статус проекта не вычисляется: это хранимое значение.
package status

import (
	"time"

	"github.com/samber/lo"

	"github.com/bigkaa/clientportal/internal/domain/model"
)

// Пороги классификации (строгое сравнение «меньше»).
const (
	OnlineWindow  = 24 * time.Hour
	OfflineWindow = 7 * 24 * time.Hour
)

// ClassifyClient вычисляет статус клиента.
// Активность в будущем (расхождение часов) даёт отрицательную
// длительность и классифицируется как online.
// Вызывать только для непустой группы проектов.
func ClassifyClient(lastActivity, now time.Time, awaitingFeedback bool) model.ClientStatus {
	elapsed := now.Sub(lastActivity)

	switch {
	case elapsed < OnlineWindow:
		return model.ClientStatusOnline
	case elapsed < OfflineWindow:
		return model.ClientStatusOffline
	case awaitingFeedback:
		return model.ClientStatusFeedbackPending
	default:
		return model.ClientStatusInactive
	}
}

// HasAwaitingFeedback сообщает, есть ли среди статусов awaiting-feedback.
// Используется при свёртке проектов клиента.
func HasAwaitingFeedback(statuses ...model.ProjectStatus) bool {
	return lo.Contains(statuses, model.ProjectStatusAwaitingFeedback)
}
