package store

// eventHub models the source's delegate lists (spec §9: "Event delegates
// ... a list of tagged subscriptions the caller installs and removes").
// Listeners fire synchronously inside the mutating call and must not
// mutate the store re-entrantly (spec §5).
type eventHub struct {
	entityCreated      []subscription[Entity]
	entityDestroyed    []subscription[Entity]
	componentAdded     []subscription[componentEvent]
	componentDestroyed []subscription[componentEvent]
	transformed        []subscription[Entity]
	nextID             int
}

type componentEvent struct {
	Entity Entity
	Type   ComponentType
}

type subscription[T any] struct {
	id      int
	handler func(T)
}

// SubscriptionID identifies a listener installed on the store so it can
// later be removed.
type SubscriptionID int

// OnEntityCreated registers a listener fired synchronously whenever an
// entity is created or emplaced.
func (s *Store) OnEntityCreated(fn func(Entity)) SubscriptionID {
	return SubscriptionID(addSub(&s.events.entityCreated, &s.events.nextID, fn))
}

// OnEntityDestroyed registers a listener fired synchronously whenever
// an entity is destroyed.
func (s *Store) OnEntityDestroyed(fn func(Entity)) SubscriptionID {
	return SubscriptionID(addSub(&s.events.entityDestroyed, &s.events.nextID, fn))
}

// OnComponentAdded registers a listener fired whenever a component bit
// is set.
func (s *Store) OnComponentAdded(fn func(Entity, ComponentType)) SubscriptionID {
	return SubscriptionID(addSub(&s.events.componentAdded, &s.events.nextID, func(ev componentEvent) { fn(ev.Entity, ev.Type) }))
}

// OnComponentDestroyed registers a listener fired whenever a component
// bit is cleared.
func (s *Store) OnComponentDestroyed(fn func(Entity, ComponentType)) SubscriptionID {
	return SubscriptionID(addSub(&s.events.componentDestroyed, &s.events.nextID, func(ev componentEvent) { fn(ev.Entity, ev.Type) }))
}

// OnTransformed registers a listener fired whenever an entity's global
// transform changes.
func (s *Store) OnTransformed(fn func(Entity)) SubscriptionID {
	return SubscriptionID(addSub(&s.events.transformed, &s.events.nextID, fn))
}

// Unsubscribe removes a previously installed listener by ID, searching
// all delegate lists.
func (s *Store) Unsubscribe(id SubscriptionID) {
	removeSub(&s.events.entityCreated, int(id))
	removeSub(&s.events.entityDestroyed, int(id))
	removeSub(&s.events.componentAdded, int(id))
	removeSub(&s.events.componentDestroyed, int(id))
	removeSub(&s.events.transformed, int(id))
}

func addSub[T any](list *[]subscription[T], nextID *int, fn func(T)) int {
	*nextID++
	id := *nextID
	*list = append(*list, subscription[T]{id: id, handler: fn})
	return id
}

func removeSub[T any](list *[]subscription[T], id int) {
	for i, sub := range *list {
		if sub.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

func (h *eventHub) fireEntityCreated(e Entity) {
	for _, sub := range h.entityCreated {
		sub.handler(e)
	}
}

func (h *eventHub) fireEntityDestroyed(e Entity) {
	for _, sub := range h.entityDestroyed {
		sub.handler(e)
	}
}

func (h *eventHub) fireComponentAdded(e Entity, t ComponentType) {
	for _, sub := range h.componentAdded {
		sub.handler(componentEvent{Entity: e, Type: t})
	}
}

func (h *eventHub) fireComponentDestroyed(e Entity, t ComponentType) {
	for _, sub := range h.componentDestroyed {
		sub.handler(componentEvent{Entity: e, Type: t})
	}
}

func (h *eventHub) fireTransformed(e Entity) {
	for _, sub := range h.transformed {
		sub.handler(e)
	}
}
