package sietch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/sietch"
)

func TestObjectEncoding(t *testing.T) {
	obj := object("space", "eng")
	assert.Equal(t, "space:eng", obj.String())

	parsed, err := sietch.ParseObject("space:eng")
	require.NoError(t, err)
	assert.Equal(t, obj, parsed)

	for _, malformed := range []string{"", "space", "space:", ":eng"} {
		_, err := sietch.ParseObject(malformed)
		assert.Error(t, err, malformed)
	}
}

func TestSubjectEncoding(t *testing.T) {
	plain := sietch.SubjectFor(object("user", "alice"))
	assert.False(t, plain.IsUserset())
	assert.Equal(t, "user:alice", plain.String())

	userset := sietch.UsersetSubject(object("team", "core"), "member")
	assert.True(t, userset.IsUserset())
	assert.Equal(t, "team:core#member", userset.String())

	parsed, err := sietch.ParseSubject("team:core#member")
	require.NoError(t, err)
	assert.Equal(t, userset, parsed)

	parsed, err = sietch.ParseSubject("user:alice")
	require.NoError(t, err)
	assert.Equal(t, plain, parsed)

	_, err = sietch.ParseSubject("team:core#")
	assert.Error(t, err)
	_, err = sietch.ParseSubject("core#member")
	assert.Error(t, err)
}

func TestTupleString(t *testing.T) {
	tup := tuple(sietch.SubjectFor(object("user", "alice")), "moderator", object("space", "eng"))
	assert.Equal(t, "space:eng#moderator@user:alice", tup.String())

	viaGroup := tuple(sietch.UsersetSubject(object("team", "core"), "member"), "moderator", object("space", "eng"))
	assert.Equal(t, "space:eng#moderator@team:core#member", viaGroup.String())
}
