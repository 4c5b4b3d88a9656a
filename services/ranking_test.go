package services

import (
	"testing"

	"github.com/themrgeek/AbodeX/models"

	"github.com/stretchr/testify/assert"
)

func TestTagForRankHundredHosts(t *testing.T) {
	total := 100

	counts := map[string]int{}
	for i := 0; i < total; i++ {
		counts[TagForRank(i, total)]++
	}

	// Top 1% gold, next up to 10% silver, next up to 30% bronze.
	assert.Equal(t, 1, counts[models.TagGold])
	assert.Equal(t, 9, counts[models.TagSilver])
	assert.Equal(t, 20, counts[models.TagBronze])
	assert.Equal(t, 70, counts[""])
}

func TestTagForRankBoundaries(t *testing.T) {
	total := 100

	assert.Equal(t, models.TagGold, TagForRank(0, total))
	assert.Equal(t, models.TagSilver, TagForRank(1, total))
	assert.Equal(t, models.TagSilver, TagForRank(9, total))
	assert.Equal(t, models.TagBronze, TagForRank(10, total))
	assert.Equal(t, models.TagBronze, TagForRank(29, total))
	assert.Equal(t, "", TagForRank(30, total))
	assert.Equal(t, "", TagForRank(99, total))
}

func TestTagForRankSmallPools(t *testing.T) {
	// A single host is the top 100%, past every threshold.
	assert.Equal(t, "", TagForRank(0, 1))

	// With ten hosts the best lands exactly on the 10% cut.
	assert.Equal(t, models.TagSilver, TagForRank(0, 10))
	assert.Equal(t, models.TagBronze, TagForRank(1, 10))
	assert.Equal(t, models.TagBronze, TagForRank(2, 10))
	assert.Equal(t, "", TagForRank(3, 10))

	assert.Equal(t, "", TagForRank(0, 0))
}
