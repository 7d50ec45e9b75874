package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKey(t *testing.T) {
	assert.Equal(t, "ratelimit:search:ip:10.0.0.1", NewKey("search", SubjectIP, "10.0.0.1"))
	assert.Equal(t, "ratelimit:search:ip:2001_db8__1", NewKey("search", SubjectIP, "2001:db8::1"))
	assert.Equal(t, "ratelimit:search:uid:7", NewKey("search", SubjectRequester, "7"))
}
