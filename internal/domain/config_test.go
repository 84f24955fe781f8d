package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   ListQuery
		want ListQuery
	}{
		{"zero values", ListQuery{}, ListQuery{Page: 1, PageSize: 10}},
		{"negative page", ListQuery{Page: -3, PageSize: 5}, ListQuery{Page: 1, PageSize: 5}},
		{"oversized", ListQuery{Page: 2, PageSize: 1000}, ListQuery{Page: 2, PageSize: 100}},
		{"negative size", ListQuery{Page: 1, PageSize: -1}, ListQuery{Page: 1, PageSize: 1}},
		{"search kept", ListQuery{Search: "web"}, ListQuery{Search: "web", Page: 1, PageSize: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(10, 100))
		})
	}
}

func TestListQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, ListQuery{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, ListQuery{Page: 3, PageSize: 10}.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 1, TotalPages(5, 0))
}
