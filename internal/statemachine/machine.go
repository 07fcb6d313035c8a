// Package statemachine реализует проверку переходов между статусами связей, заказов и жалоб.
package statemachine

import (
	"fmt"
	"sort"

	"github.com/mmeshcher/supplyhub/internal/model"
)

// Guard проверяет дополнительные условия перехода после того, как сам переход признан допустимым.
type Guard[S ~string, P any] func(from, to S, payload P) error

// Machine описывает конечный автомат: таблицу допустимых переходов и проверки для целевых статусов.
type Machine[S ~string, P any] struct {
	name   string
	edges  map[S]map[S]struct{}
	guards map[S][]Guard[S, P]
}

// New создаёт автомат по таблице переходов. Статус без исходящих рёбер считается конечным.
func New[S ~string, P any](name string, table map[S][]S) *Machine[S, P] {
	m := &Machine[S, P]{
		name:   name,
		edges:  make(map[S]map[S]struct{}, len(table)),
		guards: make(map[S][]Guard[S, P]),
	}
	for from, targets := range table {
		set := make(map[S]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		m.edges[from] = set
	}
	return m
}

// WithGuard добавляет проверку для переходов в статус to.
func (m *Machine[S, P]) WithGuard(to S, g Guard[S, P]) *Machine[S, P] {
	m.guards[to] = append(m.guards[to], g)
	return m
}

// Name возвращает имя сущности, которой управляет автомат.
func (m *Machine[S, P]) Name() string {
	return m.name
}

// CanTransition сообщает, есть ли в таблице ребро from -> to. Переход в тот же статус запрещён.
func (m *Machine[S, P]) CanTransition(from, to S) bool {
	if from == to {
		return false
	}
	_, ok := m.edges[from][to]
	return ok
}

// Validate проверяет переход и затем условия целевого статуса.
func (m *Machine[S, P]) Validate(from, to S, payload P) error {
	if !m.CanTransition(from, to) {
		return fmt.Errorf("%w: %s cannot move from %s to %s", model.ErrInvalidTransition, m.name, from, to)
	}
	for _, g := range m.guards[to] {
		if err := g(from, to, payload); err != nil {
			return err
		}
	}
	return nil
}

// Allowed возвращает отсортированный список статусов, достижимых из from за один шаг.
func (m *Machine[S, P]) Allowed(from S) []S {
	res := make([]S, 0, len(m.edges[from]))
	for to := range m.edges[from] {
		res = append(res, to)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// IsTerminal сообщает, что из статуса нет переходов.
func (m *Machine[S, P]) IsTerminal(s S) bool {
	return len(m.edges[s]) == 0
}

// States возвращает все статусы автомата в отсортированном виде.
func (m *Machine[S, P]) States() []S {
	seen := make(map[S]struct{})
	for from, targets := range m.edges {
		seen[from] = struct{}{}
		for to := range targets {
			seen[to] = struct{}{}
		}
	}
	res := make([]S, 0, len(seen))
	for s := range seen {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}
