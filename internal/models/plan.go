// Package models содержит доменные структуры движка доступа:
// тарифные планы, записи подписок, политику доступа и производные статусы.
package models

// Plan представляет тарифный план из каталога.
// Каталог неизменяем для движка — записи только читаются.
type Plan struct {
	ID           int    // Уникальный идентификатор плана
	Name         string // Машинное имя плана
	DisplayName  string // Человекочитаемое название
	Price        int    // Цена в минимальных единицах валюты
	DurationDays int    // Длительность подписки в днях
	IsActive     bool   // Доступен ли план для покупки
}

// PlanSummary — краткая сводка плана, возвращаемая вместе с производным статусом.
type PlanSummary struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Summary возвращает краткую сводку плана.
func (p *Plan) Summary() *PlanSummary {
	return &PlanSummary{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
	}
}
