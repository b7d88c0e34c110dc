package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dawadex/backend/internal/domain/entities"
)

func TestClassifierMatchesCaseInsensitively(t *testing.T) {
	bucket, ok := medlinePlusClassifier.Classify("Why is this medication prescribed?")
	assert.True(t, ok)
	assert.Equal(t, entities.BucketUses, bucket)

	bucket, ok = medlinePlusClassifier.Classify("What SIDE EFFECTS can this medication cause?")
	assert.True(t, ok)
	assert.Equal(t, entities.BucketSideEffects, bucket)
}

func TestClassifierFirstRuleWins(t *testing.T) {
	// "warnings and precautions" matches both keywords of the same rule and
	// must classify deterministically
	bucket, ok := dailyMedClassifier.Classify("WARNINGS AND PRECAUTIONS")
	assert.True(t, ok)
	assert.Equal(t, entities.BucketPrecautions, bucket)
}

func TestClassifierNoMatch(t *testing.T) {
	_, ok := medlinePlusClassifier.Classify("Brand names")
	assert.False(t, ok)

	_, ok = dailyMedClassifier.Classify("")
	assert.False(t, ok)
}
