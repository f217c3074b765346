package storage

// ReceiptSink is the storage boundary the receipt fetcher writes through
type ReceiptSink interface {
	HasReceipt(tripID string) bool
	Commit(artifactPath, name string) error
}
