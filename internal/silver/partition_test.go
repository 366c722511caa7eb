package silver_test

import (
	"testing"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/silver"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordOn(id string, date time.Time) domain.CollisionRecord {
	return domain.CollisionRecord{ID: id, Date: date}
}

func TestPartition_BucketsByYearMonth(t *testing.T) {
	jan1 := recordOn("1", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	jan31 := recordOn("2", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC))
	feb1 := recordOn("3", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	dec23 := recordOn("4", time.Date(2023, time.December, 15, 0, 0, 0, 0, time.UTC))

	partitions := silver.Partition([]domain.CollisionRecord{jan1, dec23, feb1, jan31})
	require.Len(t, partitions, 3)

	jan := partitions[domain.PartitionKey{Year: 2024, Month: time.January}]
	require.Len(t, jan, 2)
	assert.Equal(t, "1", jan[0].ID, "input order preserved within a bucket")
	assert.Equal(t, "2", jan[1].ID)

	assert.Len(t, partitions[domain.PartitionKey{Year: 2024, Month: time.February}], 1)
	assert.Len(t, partitions[domain.PartitionKey{Year: 2023, Month: time.December}], 1)
}

func TestPartition_Deterministic(t *testing.T) {
	records := []domain.CollisionRecord{
		recordOn("1", time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)),
		recordOn("2", time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)),
		recordOn("3", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}

	first := silver.Partition(records)
	second := silver.Partition(records)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("partitioning not deterministic (-first +second):\n%s", diff)
	}
}

func TestSortedKeys_Chronological(t *testing.T) {
	partitions := silver.Partition([]domain.CollisionRecord{
		recordOn("1", time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)),
		recordOn("2", time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)),
		recordOn("3", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
	})

	keys := silver.SortedKeys(partitions)
	want := []domain.PartitionKey{
		{Year: 2023, Month: time.December},
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
	}
	assert.Equal(t, want, keys)
}

func TestPartitionKey_String(t *testing.T) {
	key := domain.PartitionKey{Year: 2024, Month: time.March}
	assert.Equal(t, "2024-03", key.String())
}
