package moc

type EventMeta struct {
	// Type is the name of the event.
	Type string
	// CorrelationID groups together everything written by the same save.
	// It is the idempotency token of the save's transaction.
	CorrelationID string
}

type Event interface {
	GetMeta() EventMeta
}

// ObjectKey identifies a stored entity.
type ObjectKey struct {
	Name string
	ID   int64
}

const SaveEventType = "moc.didSave"

// SaveEvent is dispatched to OnDidSave observers after a successful save.
type SaveEvent struct {
	Meta     EventMeta
	Inserted []ObjectKey
	Updated  []ObjectKey
	Deleted  []ObjectKey
}

var _ Event = SaveEvent{}

func (e SaveEvent) GetMeta() EventMeta {
	return e.Meta
}
