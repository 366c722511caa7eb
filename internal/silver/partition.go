package silver

import (
	"sort"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// Partition buckets cleaned records by the {year, month} of their crash
// date, preserving input order within each bucket. Pure and deterministic:
// the same records always land in the same buckets regardless of run or
// input order.
func Partition(records []domain.CollisionRecord) map[domain.PartitionKey][]domain.CollisionRecord {
	partitions := make(map[domain.PartitionKey][]domain.CollisionRecord)
	for _, rec := range records {
		key := domain.PartitionKeyFor(rec.Date)
		partitions[key] = append(partitions[key], rec)
	}
	return partitions
}

// SortedKeys returns the partition keys in chronological order, giving
// storage writers a stable iteration order.
func SortedKeys(partitions map[domain.PartitionKey][]domain.CollisionRecord) []domain.PartitionKey {
	keys := make([]domain.PartitionKey, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}
