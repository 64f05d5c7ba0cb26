package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painfulChen/offercome-sub000/models"
)

func TestCacheKeyShapes(t *testing.T) {
	cases := []struct {
		key  PartitionKey
		want string
	}{
		{PartitionKey{StudentID: "s1"}, "student:s1"},
		{PartitionKey{ModuleID: "m1"}, "module:m1"},
		{PartitionKey{StudentID: "s1", ModuleID: "m1"}, "student:s1:module:m1"},
		{PartitionKey{ServiceType: "resume"}, "service:resume"},
		{PartitionKey{StudentID: "s1", ServiceType: "resume"}, "student:s1:service:resume"},
	}
	for _, tc := range cases {
		got, err := tc.key.CacheKey()
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestCacheKeyEmpty(t *testing.T) {
	_, err := PartitionKey{}.CacheKey()
	assert.Error(t, err)
}

func TestServiceForCachesInstances(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)

	a1, err := r.ServiceFor(PartitionKey{StudentID: "s1"})
	require.NoError(t, err)
	a2, err := r.ServiceFor(PartitionKey{StudentID: "s1"})
	require.NoError(t, err)
	b, err := r.ServiceFor(PartitionKey{StudentID: "s2"})
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, r.InstanceCount())
}

func TestPartitionIsolation(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)
	keyA := PartitionKey{StudentID: "student-a"}
	keyB := PartitionKey{StudentID: "student-b"}

	_, err := r.IngestText(context.Background(), keyA, "interview preparation notes", "notes", "n.txt", models.DocTypeText, models.DocumentMetadata{})
	require.NoError(t, err)

	resultsA, err := r.Search(context.Background(), keyA, "interview preparation", 10)
	require.NoError(t, err)
	assert.Len(t, resultsA, 1)

	resultsB, err := r.Search(context.Background(), keyB, "interview preparation", 10)
	require.NoError(t, err)
	assert.Empty(t, resultsB)
}

func TestSearchDoubleFiltersForeignDocuments(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)
	key := PartitionKey{StudentID: "student-a"}

	svc, err := r.ServiceFor(key)
	require.NoError(t, err)

	// a document belonging to another student landing in this instance's
	// store (as a non-partition-aware cold load would) must not surface
	_, err = svc.IngestText(context.Background(), "shared topic foreign doc", "foreign", "f.txt", models.DocTypeText,
		models.DocumentMetadata{StudentID: "student-b"})
	require.NoError(t, err)
	_, err = r.IngestText(context.Background(), key, "shared topic own doc", "own", "o.txt", models.DocTypeText, models.DocumentMetadata{})
	require.NoError(t, err)

	results, err := r.Search(context.Background(), key, "shared topic", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "student-a", results[0].Metadata.StudentID)
}

func TestIngestStampsMetadata(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)
	key := PartitionKey{StudentID: "s9", ModuleID: "m3"}

	doc, err := r.IngestText(context.Background(), key, "stamped content here", "t", "t.txt", models.DocTypeText, models.DocumentMetadata{})
	require.NoError(t, err)

	assert.Equal(t, "s9", doc.Metadata.StudentID)
	assert.Equal(t, "m3", doc.Metadata.ModuleID)
	assert.Equal(t, "Student s9", doc.Metadata.StudentName)
	assert.Equal(t, "Module m3", doc.Metadata.ModuleName)
}

func TestIngestKeepsProvidedNames(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)
	key := PartitionKey{StudentID: "s9", ServiceType: "interview"}

	doc, err := r.IngestText(context.Background(), key, "named student content", "t", "t.txt", models.DocTypeText,
		models.DocumentMetadata{StudentName: "Zhang Wei"})
	require.NoError(t, err)

	assert.Equal(t, "Zhang Wei", doc.Metadata.StudentName)
	assert.Equal(t, "interview", doc.Metadata.ServiceType)
}

func TestRouterRejectsEmptyKey(t *testing.T) {
	r := NewRagRouter(500, nil, nil, nil, nil)

	_, err := r.IngestText(context.Background(), PartitionKey{}, "content", "t", "t.txt", models.DocTypeText, models.DocumentMetadata{})
	assert.Error(t, err)
	_, err = r.Search(context.Background(), PartitionKey{}, "content", 10)
	assert.Error(t, err)
}
