package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "usersearch/pkg/domain"
)

func TestPaginate(t *testing.T) {
	uids := []id.UID{"1", "2", "3", "4", "5"}

	assert.Equal(t, []id.UID{"1", "2"}, paginate(uids, 1, 2))
	assert.Equal(t, []id.UID{"5"}, paginate(uids, 3, 2))
	assert.Equal(t, []id.UID{}, paginate(uids, 4, 2))
	assert.Equal(t, []id.UID{"1", "2"}, paginate(uids, -3, 2))
	assert.Equal(t, uids, paginate(uids, 1, 10))
	assert.Equal(t, []id.UID{}, paginate(nil, 1, 10))
	assert.Equal(t, []id.UID{}, paginate(uids, math.MaxInt64, 50))
	assert.Equal(t, []id.UID{}, paginate(uids, math.MaxInt64/2+2, 2))
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, pageCount(0, 50))
	assert.Equal(t, 1, pageCount(1, 50))
	assert.Equal(t, 1, pageCount(50, 50))
	assert.Equal(t, 2, pageCount(51, 50))
}

func TestFormatTiming(t *testing.T) {
	assert.Equal(t, "0.00", formatTiming(0))
	assert.Equal(t, "1.25", formatTiming(1250*time.Millisecond))
}

func TestNormalize(t *testing.T) {
	s := New(nil, nil, nil, nil, Config{ResultsPerPage: 20})

	n := s.normalize(Query{Text: "  ali "})
	assert.Equal(t, "ali", n.Text)
	assert.Equal(t, DefaultSearchBy, n.SearchBy)
	assert.Equal(t, 1, n.Page)
	assert.True(t, n.paginate)
	assert.Equal(t, 20, n.pageSize)
	assert.Equal(t, id.UID(""), n.Requester)

	off := false
	n = s.normalize(Query{Paginate: &off, ResultsPerPage: 5, Requester: "https://remote.example/u/x"})
	assert.False(t, n.paginate)
	assert.Equal(t, 5, n.pageSize)
	assert.Equal(t, id.UID(""), n.Requester)

	assert.Equal(t, defaultResultsPerPage, New(nil, nil, nil, nil, Config{}).cfg.ResultsPerPage)
}
