package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evalhub/evalhub/pkg/minio"
)

func TestMinioSourceExposesClient(t *testing.T) {
	client := &minio.Minio{}
	source := NewMinioSource(client, "corpus/")

	assert.Equal(t, "minio", source.Type())
	assert.Same(t, client, source.Client(), "the application attaches its observer through this accessor")
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, isMarkdown("evalite/a.md"))
	assert.True(t, isMarkdown("evalite/a.markdown"))
	assert.True(t, isMarkdown("evalite/A.MD"))
	assert.False(t, isMarkdown("evalite/a.txt"))
	assert.False(t, isMarkdown("evalite"))
}
