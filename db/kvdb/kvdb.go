package kvdb

const (
	PostingsBucket = "postings"
	CatalogBucket  = "catalog"
)

var buckets = []string{PostingsBucket, CatalogBucket}

type DB interface {
	Set(bucket string, key string, value string) error
	SetMany(bucket string, values map[string]string) error
	Get(bucket string, key string) (string, error)
	Delete(bucket string, key string) error
	GetAllKeys(bucket string) ([]string, error)
	Close() error
}
