package domain

// TransactionLog persists transaction state changes and block images.
type TransactionLog interface {
	AppendState(entry StateEntry) error
	AppendBeforeImage(entry ImageEntry) error
	AppendAfterImage(entry ImageEntry) error
	SyncAfterImages() error
	LastTransactionId() (int32, error)
}

type TransactionEventPublisher interface {
	Publish(event TransactionEvent) error
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(TransactionEvent) error {
	return nil
}
